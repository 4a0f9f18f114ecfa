package capability

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const classNameKey = "classname"

// Descriptor names a capability variant plus its configuration payload.
type Descriptor struct {
	Name string
	Args Arguments
}

// ParseDescriptor accepts either "Name" / "Name:args" or the argument form
// carrying the name in a classname entry.
func ParseDescriptor(text string) (Descriptor, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Descriptor{}, errors.New("empty capability descriptor")
	}
	if name, rest, ok := strings.Cut(text, ":"); ok && !strings.ContainsAny(name, "=,(") {
		args, err := ParseArguments(rest)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Name: strings.TrimSpace(name), Args: args}, nil
	}
	if !strings.ContainsAny(text, "=,(") {
		return Descriptor{Name: text}, nil
	}
	args, err := ParseArguments(text)
	if err != nil {
		return Descriptor{}, err
	}
	return FromArguments(args)
}

func FromArguments(args Arguments) (Descriptor, error) {
	name := strings.TrimSpace(args.String(classNameKey, ""))
	if name == "" {
		return Descriptor{}, fmt.Errorf("%w: descriptor %q has no %s", ErrInvalidArgument, args.Encode(), classNameKey)
	}
	return Descriptor{Name: name, Args: args}, nil
}

func (d Descriptor) String() string {
	if d.Args.Len() == 0 {
		return d.Name
	}
	return d.Name + ":" + d.Args.Encode()
}

type descriptorObject struct {
	Name string `json:"name" yaml:"name"`
	Args string `json:"args" yaml:"args"`
}

func (d descriptorObject) descriptor() (Descriptor, error) {
	args, err := ParseArguments(d.Args)
	if err != nil {
		return Descriptor{}, err
	}
	if strings.TrimSpace(d.Name) == "" {
		return FromArguments(args)
	}
	return Descriptor{Name: strings.TrimSpace(d.Name), Args: args}, nil
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptorObject{Name: d.Name, Args: d.Args.Encode()})
}

// UnmarshalJSON accepts a descriptor string or a {"name", "args"} object.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParseDescriptor(text)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	var obj descriptorObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode descriptor: %w", err)
	}
	parsed, err := obj.descriptor()
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Descriptor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseDescriptor(node.Value)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	var obj descriptorObject
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("decode descriptor: %w", err)
	}
	parsed, err := obj.descriptor()
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
