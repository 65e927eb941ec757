// Command chatshot classifies screenshots as chat or not-chat.
//
// Subcommands:
//
//	classify <image>         run the pipeline on one file and print the verdict
//	serve                    run the HTTP classification API
//	status                   show readiness of paths, prompts and providers
//	config init|validate     manage the configuration file
//
// Configuration is read from --config, ~/.config/chatshot/config.toml or
// ./chatshot.toml, with credentials falling back to the environment. A .env
// file in the working directory is loaded first when present.
package main
