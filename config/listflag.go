package config

import (
	"fmt"
	"strings"
)

// listFlag is a flag.Value for list valued options, usable both on the
// command line with a separator and as a yaml list in the config file.
type listFlag struct {
	sep     string
	allowed map[string]bool
	value   string
	values  []string
}

func newListFlag(sep string, allowed ...string) *listFlag {
	lf := &listFlag{
		sep:     sep,
		allowed: make(map[string]bool),
	}

	for _, a := range allowed {
		lf.allowed[a] = true
	}

	return lf
}

func commaListFlag(allowed ...string) *listFlag {
	return newListFlag(",", allowed...)
}

func (lf *listFlag) Set(value string) error {
	if lf == nil {
		return nil
	}

	if value == "" {
		lf.value = ""
		lf.values = nil
		return nil
	}

	values := strings.Split(value, lf.sep)
	if err := lf.validate(values); err != nil {
		return err
	}

	lf.value = value
	lf.values = values

	return nil
}

func (lf *listFlag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var values []string
	if err := unmarshal(&values); err != nil {
		return err
	}

	if err := lf.validate(values); err != nil {
		return err
	}

	lf.values = values
	lf.value = strings.Join(values, lf.sep)

	return nil
}

func (lf *listFlag) validate(values []string) error {
	if len(lf.allowed) == 0 {
		return nil
	}

	for _, v := range values {
		if !lf.allowed[v] {
			return fmt.Errorf("value not allowed: %s", v)
		}
	}

	return nil
}

func (lf *listFlag) String() string {
	if lf == nil {
		return ""
	}

	return lf.value
}
