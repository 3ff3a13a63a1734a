package tone

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadSettings reads enhancement settings from a TOML file. Keys missing from the file keep
// their DefaultSettings value; unknown keys and invalid values are errors.
//
//	enable_emojis   = true
//	enable_styling  = true
//	emoji_intensity = "high"
//	emoji_placement = "end_of_message"
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	md, err := toml.DecodeFile(path, &settings)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Settings{}, fmt.Errorf("load settings %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("load settings %s: %w", path, err)
	}
	return settings, nil
}
