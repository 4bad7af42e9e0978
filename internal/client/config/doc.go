// Package config loads runtime configuration for the HospiVibe CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Default).
//  2. Optional config file selected with -c or --config. Any format viper
//     reads works; keys use snake_case.
//  3. HOSPIVIBE_* entries of the dotenv file (--env-file, default ".env").
//  4. HOSPIVIBE_* environment variables.
//  5. Command-line flags that were set explicitly.
//
// # Example file
//
// Durations are written as Go duration strings:
//
//	{
//	  "api_url": "http://127.0.0.1:5000",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "session_backend": "sqlite",
//	  "db_path": "hospivibe.db"
//	}
//
// The same keys are read from HOSPIVIBE_API_URL, HOSPIVIBE_REQUEST_TIMEOUT
// and so on.
package config
