package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags which service option table a line item points into.
type Kind string

const (
	KindTVMounting        Kind = "tv_mounting"
	KindFurnitureAssembly Kind = "furniture_assembly"
	KindInstallation      Kind = "installation_service"
	KindGazebo            Kind = "gazebo_service"
)

var ErrUnknownKind = errors.New("unknown service option kind")

func Kinds() []Kind {
	return []Kind{KindTVMounting, KindFurnitureAssembly, KindInstallation, KindGazebo}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindTVMounting, KindFurnitureAssembly, KindInstallation, KindGazebo:
		return true
	}
	return false
}

func (k Kind) Label() string {
	switch k {
	case KindTVMounting:
		return "TV Mounting Option"
	case KindFurnitureAssembly:
		return "Furniture Assembly Option"
	case KindInstallation:
		return "Installation Service Option"
	case KindGazebo:
		return "Gazebo Assembly Option"
	}
	return string(k)
}

// Ref points at a single service option of any kind.
type Ref struct {
	Kind Kind  `json:"kind" validate:"required"`
	ID   int64 `json:"id" validate:"gt=0"`
}

func (r Ref) String() string { return string(r.Kind) + ":" + strconv.FormatInt(r.ID, 10) }

// ServiceOption is implemented by exactly the four option variants of this
// package.
type ServiceOption interface {
	Kind() Kind
	Base() *BaseOption
	UnitPrice() decimal.Decimal
	TotalPrice() decimal.Decimal
	DisplayTitle() string
	isServiceOption()
}

func RefOf(o ServiceOption) Ref {
	return Ref{Kind: o.Kind(), ID: o.Base().ID}
}

// NewOption returns an empty variant for kind with the catalog defaults
// applied.
func NewOption(kind Kind) (ServiceOption, error) {
	var opt ServiceOption
	switch kind {
	case KindTVMounting:
		opt = &TVMountingOption{Needs: TVNeedsMounting, Bracket: BracketOwn, WallType: WallDryWall}
	case KindFurnitureAssembly:
		opt = &FurnitureAssemblyOption{}
	case KindInstallation:
		opt = &InstallationServiceOption{Location: InstallIndoor, PowerNearby: PowerNotSure}
	case KindGazebo:
		opt = &GazeboServiceOption{Action: GazeboInstallation, Anchoring: No}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	opt.Base().setDefaults()
	return opt, nil
}
