// Package whatsrb is a client for the WhatsRB Cloud WhatsApp messaging API.
//
// A Client owns a single Transport and hands out one accessor per collection:
//
//	client, err := whatsrb.NewClient(whatsrb.Config{APIKey: os.Getenv("WHATSRB_API_KEY")})
//	if err != nil {
//	    return err
//	}
//	session, err := client.Sessions().Create(ctx, whatsrb.SessionParams{Name: "support"})
//	if err != nil {
//	    return err
//	}
//	session, err = session.WaitForQR(ctx, whatsrb.WaitOptions{}, func(qr string) {
//	    render(qr)
//	})
//
// Every call issues exactly one request (polling helpers issue one per poll)
// and never retries. Failures are *Error values matched with errors.Is
// against the Err* kinds. Requests are sent over HTTPS only; plain HTTP is
// accepted for localhost and 127.0.0.1.
//
// Inbound webhook deliveries are verified with the webhooksig package.
package whatsrb
