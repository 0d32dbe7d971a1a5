package core

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Enabled bool   `mapstructure:"enabled"` // Whether Telegram notifications are enabled
	Token   string `mapstructure:"token"`   // Telegram bot token
	Users   []int  `mapstructure:"users"`   // List of authorized user IDs
}
