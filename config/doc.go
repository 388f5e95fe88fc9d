// Package config loads and validates client pipeline configuration.
//
// It uses Viper to read a config.yml, optionally loads a .env file with
// godotenv, and lets environment variables override any key (LOGGING_LEVEL
// overrides logging.level).
//
// # Usage
//
//	cfg, err := config.Load("billing-client")
//	client, err := cfg.NewClient(nil)
//	resp, err := client.Get(ctx, "https://api.example.com/invoices")
//
// LoadConfig fills any struct, for callers that embed Config in their own:
//
//	err := config.LoadConfig("billing-client", &myCfg, config.WithConfigFile("./config.yml"))
package config
