package plugins

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

// DefaultGroup is used when a descriptor names no group.
const DefaultGroup = "Plugins"

var (
	ErrMissingID     = errors.New("plugin id is required")
	ErrMissingName   = errors.New("plugin name is required")
	ErrUnknownIcon   = errors.New("unknown plugin icon")
	ErrInvalidAction = errors.New("invalid plugin action")
	ErrDuplicateID   = errors.New("duplicate plugin id")
)

// Validate checks a descriptor before it becomes a command.
func Validate(d Descriptor) error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrMissingName
	}
	if !domain.Icon(d.Icon).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownIcon, d.Icon)
	}
	_, err := d.Action.toAction()
	return err
}

func (a Action) toAction() (domain.Action, error) {
	switch a.Type {
	case string(domain.ActionShell):
		if strings.TrimSpace(a.Command) == "" {
			return nil, fmt.Errorf("%w: shell action without command", ErrInvalidAction)
		}
		return domain.ShellAction{Command: a.Command}, nil
	case string(domain.ActionOpen):
		if strings.TrimSpace(a.Path) == "" {
			return nil, fmt.Errorf("%w: open action without path", ErrInvalidAction)
		}
		return domain.OpenAction{Path: a.Path}, nil
	case string(domain.ActionURL):
		if strings.TrimSpace(a.URL) == "" {
			return nil, fmt.Errorf("%w: url action without url", ErrInvalidAction)
		}
		return domain.URLAction{URL: a.URL}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidAction, a.Type)
	}
}

// Mapper converts plugin descriptors to launcher commands
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// ToCommand maps one validated descriptor.
func (m *Mapper) ToCommand(d Descriptor) (domain.Command, error) {
	if err := Validate(d); err != nil {
		return domain.Command{}, err
	}
	action, _ := d.Action.toAction()

	group := d.Group
	if group == "" {
		group = DefaultGroup
	}

	var keywords []string
	for _, k := range d.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	return domain.Command{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        domain.Icon(d.Icon),
		Group:       group,
		Keywords:    keywords,
		Action:      action,
	}, nil
}

// MapAll maps every descriptor, keeping the first of duplicate ids. Rejected
// descriptors are returned alongside, keyed by their position.
func (m *Mapper) MapAll(descs []Descriptor) ([]domain.Command, map[int]error) {
	cmds := make([]domain.Command, 0, len(descs))
	rejected := make(map[int]error)
	seen := make(map[string]bool, len(descs))

	for i, d := range descs {
		cmd, err := m.ToCommand(d)
		if err != nil {
			rejected[i] = err
			continue
		}
		if seen[cmd.ID] {
			rejected[i] = fmt.Errorf("%w: %s", ErrDuplicateID, cmd.ID)
			continue
		}
		seen[cmd.ID] = true
		cmds = append(cmds, cmd)
	}
	return cmds, rejected
}
