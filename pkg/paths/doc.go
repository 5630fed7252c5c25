// Package paths provides centralized path handling for jtd.
//
// This package implements the XDG Base Directory specification for the few
// files jtd keeps outside the manifest repository:
//
//   - Data: $XDG_DATA_HOME/jointhedots (the dotfile metadata store)
//   - Config: $XDG_CONFIG_HOME/jointhedots (config.toml)
//   - State: $XDG_STATE_HOME/jointhedots (jtd.log)
//
// # Environment Variables
//
//   - JTD_DATA_DIR: Override the data directory
//   - JTD_CONFIG_DIR: Override the config directory
//   - JTD_STATE_DIR: Override the state directory
//
// # Usage
//
//	p, err := paths.New()
//	if err != nil {
//	    return err
//	}
//	store := p.MetadataPath()     // ~/.local/share/jointhedots/manifest.yaml
//	target := paths.ExpandHome("~/.config/kitty/kitty.conf")
package paths
