// Package postbox assembles the transactional email service.
//
// A Service renders localized markdown templates into HTML and plain text
// and submits them through a shared transport (SMTP, Resend or in-memory),
// one at a time or as a bulk batch with bounded concurrency.
//
// Configuration comes from the environment:
//
//	cfg, err := postbox.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	svc, err := postbox.New(cfg, postbox.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	return svc.Run()
//
// Run preloads every template before accepting requests, so a broken template
// or missing layout fails startup.
package postbox
