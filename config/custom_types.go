/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"
)

// BytesCount represents a size in bytes that can be parsed from both integers and
// human-readable strings (e.g. "250M", "1Gi").
type BytesCount uint64

// UnmarshalText implements encoding.TextUnmarshaler interface.
func (b *BytesCount) UnmarshalText(text []byte) error {
	res, err := parseBytesCount(string(text))
	if err != nil {
		return err
	}
	*b = res
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (b *BytesCount) UnmarshalYAML(value *yaml.Node) error {
	var num uint64
	if err := value.Decode(&num); err == nil {
		*b = BytesCount(num)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid bytes count format: %v", value.Value)
	}
	return b.UnmarshalText([]byte(s))
}

// String returns the human-readable string representation.
func (b BytesCount) String() string {
	return bytefmt.ByteSize(uint64(b))
}

func parseBytesCount(s string) (BytesCount, error) {
	v := strings.TrimSpace(s)
	if num, err := strconv.ParseUint(v, 10, 64); err == nil {
		return BytesCount(num), nil
	}
	// k8s power-of-two suffixes ("Mi", "Gi") are understood by bytefmt without the trailing "i".
	for _, suffix := range [...]string{"Ki", "Mi", "Gi", "Ti", "Pi", "Ei"} {
		if strings.HasSuffix(v, suffix) {
			v = strings.TrimSuffix(v, "i")
			break
		}
	}
	num, err := bytefmt.ToBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid bytes count format (%s): %w", s, err)
	}
	return BytesCount(num), nil
}

// TimeDuration represents a time duration that can be parsed from both integers (nanoseconds)
// and human-readable strings (e.g. "1h30m").
type TimeDuration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler interface.
func (d *TimeDuration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if num, err := strconv.ParseInt(s, 10, 64); err == nil {
		if num < 0 {
			return fmt.Errorf("negative value is not allowed: %d", num)
		}
		*d = TimeDuration(num)
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid time duration format (%s): %w", s, err)
	}
	*d = TimeDuration(dur)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *TimeDuration) UnmarshalJSON(data []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("invalid time duration format: %v", value.Value)
	}
	return d.UnmarshalText([]byte(raw))
}

// String returns the human-readable string representation.
func (d TimeDuration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON implements json.Marshaler interface.
func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML implements yaml.Marshaler interface.
func (d TimeDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
