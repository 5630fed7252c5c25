package manifest

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/logging"
	"github.com/dob9601/jointhedots/pkg/metadata"
)

var log = logging.GetLogger("manifest")

const (
	configKey   = "config"
	dotfilesKey = "dotfiles"
	legacyKey   = ".config"

	maxSuggestions = 3
)

// Manifest is the parsed jtd.yaml of a dotfile repository
type Manifest struct {
	Config   SyncConfig
	Dotfiles map[string]*Dotfile
}

// Load reads and parses the manifest at path
func Load(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestUnreadable, "could not read manifest %s", path).
			WithDetail("path", path)
	}

	m, err := Parse(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e.WithDetail("path", path)
		}
		return nil, err
	}

	log.Debug().Str("path", path).Int("dotfiles", len(m.Dotfiles)).Msg("Loaded manifest")
	return m, nil
}

// Parse decodes a manifest. Documents with a top-level config or dotfiles
// key use the explicit schema; anything else is read as the flat schema
// where every top-level key except .config names a dotfile.
func Parse(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestUnreadable, "could not parse manifest")
	}

	m := &Manifest{Config: DefaultSyncConfig(), Dotfiles: map[string]*Dotfile{}}
	if len(doc.Content) == 0 {
		return m, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrManifestUnreadable, "manifest must be a mapping of dotfile names")
	}

	if hasKey(root, configKey) || hasKey(root, dotfilesKey) {
		if err := m.decodeExplicit(root); err != nil {
			return nil, err
		}
	} else if err := m.decodeLegacy(root); err != nil {
		return nil, err
	}

	for name, d := range m.Dotfiles {
		if d == nil {
			return nil, errors.Newf(errors.ErrManifestInvalid, "dotfile %s has no file or target", name).
				WithDetail("dotfile", name)
		}
		d.Name = name
		if err := d.validate(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manifest) decodeExplicit(root *yaml.Node) error {
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		switch key {
		case configKey:
			if err := value.Decode(&m.Config); err != nil {
				return errors.Wrap(err, errors.ErrManifestUnreadable, "could not parse manifest config")
			}
		case dotfilesKey:
			if err := value.Decode(&m.Dotfiles); err != nil {
				return errors.Wrap(err, errors.ErrManifestUnreadable, "could not parse manifest dotfiles")
			}
		default:
			return errors.Newf(errors.ErrManifestInvalid,
				"unexpected top-level key %q; dotfiles belong under %q", key, dotfilesKey).
				WithDetail("key", key)
		}
	}
	if m.Dotfiles == nil {
		m.Dotfiles = map[string]*Dotfile{}
	}
	return nil
}

func (m *Manifest) decodeLegacy(root *yaml.Node) error {
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		if key == legacyKey {
			if err := value.Decode(&m.Config); err != nil {
				return errors.Wrap(err, errors.ErrManifestUnreadable, "could not parse manifest config")
			}
			continue
		}

		var d Dotfile
		if err := value.Decode(&d); err != nil {
			return errors.Wrapf(err, errors.ErrManifestUnreadable, "could not parse dotfile %s", key).
				WithDetail("dotfile", key)
		}
		m.Dotfiles[key] = &d
	}
	return nil
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

func (d *Dotfile) validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Newf(errors.ErrManifestInvalid, format, args...).WithDetail("dotfile", d.Name)
	}

	switch {
	case strings.TrimSpace(d.File) == "":
		return invalid("dotfile %s has no file", d.Name)
	case strings.TrimSpace(d.Target) == "":
		return invalid("dotfile %s has no target", d.Name)
	case filepath.IsAbs(d.File) || path.IsAbs(d.File):
		return invalid("file of dotfile %s must be relative to the repository root, got %s", d.Name, d.File)
	}

	clean := path.Clean(filepath.ToSlash(d.File))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return invalid("file of dotfile %s points outside the repository: %s", d.Name, d.File)
	}
	d.File = clean
	return nil
}

// Names returns the dotfile names in sorted order
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Dotfiles))
	for name := range m.Dotfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named dotfile, or a DotfileNotFound error suggesting
// similar names
func (m *Manifest) Get(name string) (*Dotfile, error) {
	if d, ok := m.Dotfiles[name]; ok {
		return d, nil
	}

	err := errors.Newf(errors.ErrDotfileNotFound, "no dotfile named %q in the manifest", name).
		WithDetail("dotfile", name)
	if suggestions := m.suggest(name); len(suggestions) > 0 {
		err.Message = fmt.Sprintf("%s; did you mean %s?", err.Message, strings.Join(suggestions, ", "))
		err = err.WithDetail("suggestions", suggestions)
	}
	return nil, err
}

func (m *Manifest) suggest(name string) []string {
	names := m.Names()
	seen := map[string]bool{}
	var out []string

	for _, match := range fuzzy.Find(name, names) {
		if len(out) == maxSuggestions {
			return out
		}
		out = append(out, match.Str)
		seen[match.Str] = true
	}

	lower := strings.ToLower(name)
	for _, candidate := range names {
		if len(out) == maxSuggestions {
			break
		}
		c := strings.ToLower(candidate)
		if !seen[candidate] && (strings.Contains(c, lower) || strings.Contains(lower, c)) {
			out = append(out, candidate)
		}
	}
	return out
}

// TargetDotfiles picks the dotfiles an operation applies to: every dotfile
// with all, the requested names otherwise, or the selector's choice when
// nothing was requested. The result is sorted by name.
func (m *Manifest) TargetDotfiles(requested []string, all bool, selector Selector) ([]*Dotfile, error) {
	var names []string
	switch {
	case all:
		names = m.Names()
	case len(requested) > 0:
		names = requested
	default:
		if selector == nil {
			return nil, errors.New(errors.ErrInvalidInput, "no dotfiles given; name them or pass --all")
		}
		chosen, err := selector.MultiSelect(
			`Select the dotfiles to use. Press "SPACE" to select and "ENTER" to proceed.`, m.Names())
		if err != nil {
			return nil, err
		}
		names = chosen
	}

	seen := map[string]bool{}
	var out []*Dotfile
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		d, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// HasUnexecutedRunStages reports whether any of the dotfiles would run hooks
// that have not run on this machine
func HasUnexecutedRunStages(dotfiles []*Dotfile, store *metadata.Store) bool {
	for _, d := range dotfiles {
		meta, _ := store.Lookup(d.Name)
		if d.HasUnexecutedRunStages(meta) {
			return true
		}
	}
	return false
}

func dotfileNames(dotfiles []*Dotfile) []string {
	names := make([]string, len(dotfiles))
	for i, d := range dotfiles {
		names[i] = d.Name
	}
	return names
}
