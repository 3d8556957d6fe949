// Package config manages the pktdecode settings file.
//
// Settings are stored as YAML and hold decoder options, output preferences
// and decode service options. Command-line flags override whatever the file
// says; a missing file means defaults.
//
// # Configuration File Location
//
// The settings file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/pktdecode/config.yaml or $HOME/.config/pktdecode/config.yaml
//   - macOS: $HOME/.config/pktdecode/config.yaml
//   - Windows: %LOCALAPPDATA%\pktdecode\config.yaml
//
// # Usage Example
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	packets, err := packet.Decode(input, settings.DecoderOptions()...)
//
// # Thread Safety
//
// The default settings are loaded once with sync.Once. Writes go through a
// mutex and are atomic (temporary file + rename).
package config
