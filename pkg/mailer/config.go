package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	DefaultLang string `env:"MAILER_DEFAULT_LANG" envDefault:"en"`
	// LogoAlt marks the layout logo image so the text part can drop it.
	LogoAlt   string `env:"MAILER_LOGO_ALT" envDefault:"Postbox"`
	TextWidth int    `env:"MAILER_TEXT_WIDTH" envDefault:"0"`
	// MessageIDDomain is used for generated Message-IDs. The sender's
	// domain is used when empty.
	MessageIDDomain string `env:"MAILER_MESSAGE_ID_DOMAIN"`
}
