package dietplan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ward-diet/api/internal/enum"
)

// ErrInvalidPackageRef is returned for a malformed package reference.
var ErrInvalidPackageRef = errors.New("invalid package reference")

const customPrefix = "custom-"

// PackageRef points a diet order at either a standard diet package or a
// custom plan. It is parsed once at the HTTP boundary.
type PackageRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// StandardPackage refers to a row of the diet package catalog.
func StandardPackage(id string) PackageRef {
	return PackageRef{Kind: enum.PackageKindStandard, ID: id}
}

// CustomPlan refers to an entry of the custom plan store.
func CustomPlan(id string) PackageRef {
	return PackageRef{Kind: enum.PackageKindCustom, ID: id}
}

// ParsePackageRef accepts the stored string form: "custom-<id>" for custom
// plans and a bare id for standard packages.
func ParsePackageRef(s string) (PackageRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PackageRef{}, fmt.Errorf("%w: empty", ErrInvalidPackageRef)
	}
	if id, ok := strings.CutPrefix(s, customPrefix); ok {
		if id == "" {
			return PackageRef{}, fmt.Errorf("%w: %q", ErrInvalidPackageRef, s)
		}
		return CustomPlan(id), nil
	}
	return StandardPackage(s), nil
}

// IsZero reports whether no package was chosen.
func (r PackageRef) IsZero() bool { return r.ID == "" }

// IsCustom reports whether r points at a custom plan.
func (r PackageRef) IsCustom() bool { return r.Kind == enum.PackageKindCustom }

// String renders the stored form understood by ParsePackageRef.
func (r PackageRef) String() string {
	if r.IsCustom() {
		return customPrefix + r.ID
	}
	return r.ID
}

// MarshalJSON emits the object form.
func (r PackageRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	type plain PackageRef
	return json.Marshal(plain(r))
}

// UnmarshalJSON accepts null, the legacy string form, or {kind,id}.
func (r *PackageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = PackageRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*r = PackageRef{}
			return nil
		}
		ref, err := ParsePackageRef(s)
		if err != nil {
			return err
		}
		*r = ref
		return nil
	}
	type plain PackageRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPackageRef, err)
	}
	switch p.Kind {
	case enum.PackageKindStandard, enum.PackageKindCustom:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPackageRef, p.Kind)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPackageRef)
	}
	*r = PackageRef(p)
	return nil
}
