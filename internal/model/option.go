package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity bounds every quantity field; keep validate tags in sync.
const MaxQuantity = 10000

type YesNo string

const (
	Yes YesNo = "YES"
	No  YesNo = "NO"
)

type TVNeeds string

const (
	TVNeedsMounting   TVNeeds = "MOUNTING"
	TVNeedsUnmounting TVNeeds = "UNMOUNTING"
	TVNeedsBoth       TVNeeds = "BOTH"
)

type Bracket string

const (
	BracketOwn        Bracket = "OWN"
	BracketFlat       Bracket = "FLAT"
	BracketTilt       Bracket = "TILT"
	BracketFullMotion Bracket = "FULL_MOTION"
)

type WallType string

const (
	WallDryWall  WallType = "DRY_WALL"
	WallConcrete WallType = "CONCRETE"
	WallStone    WallType = "STONE"
	WallBricks   WallType = "BRICKS"
)

type InstallLocation string

const (
	InstallIndoor  InstallLocation = "INDOOR"
	InstallOutdoor InstallLocation = "OUTDOOR"
	InstallBoth    InstallLocation = "BOTH"
)

type PowerNearby string

const (
	PowerNo      PowerNearby = "NO"
	PowerYes     PowerNearby = "YES"
	PowerNotSure PowerNearby = "NOT_SURE"
)

type GazeboAction string

const (
	GazeboInstallation   GazeboAction = "INSTALLATION"
	GazeboUninstallation GazeboAction = "UNINSTALLATION"
	GazeboReplacement    GazeboAction = "REPLACEMENT"
	GazeboCompletion     GazeboAction = "COMPLETION"
)

type GazeboSize string

const (
	Size10x10  GazeboSize = "10X10"
	Size12x12  GazeboSize = "12X12"
	Size12x16  GazeboSize = "12X16"
	Size12x20  GazeboSize = "12X20"
	SizeCustom GazeboSize = "CUSTOM"
)

// BaseOption holds the fields every service option variant shares. It is
// never stored on its own.
type BaseOption struct {
	ID               int64               `json:"id"`
	CategoryID       int64               `json:"category_id" validate:"required,gt=0"`
	Title            string              `json:"title" validate:"max=100"`
	Description      string              `json:"description"`
	Image            string              `json:"image"`
	Price            decimal.NullDecimal `json:"price" validate:"omitempty,gte=0"`
	Quantity         int                 `json:"quantity" validate:"gte=1,max=10000"`
	NeedsMovingHelp  YesNo               `json:"needs_moving_help" validate:"oneof=YES NO"`
	MovingHelpCharge decimal.NullDecimal `json:"moving_help_charge" validate:"omitempty,gte=0"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func (b *BaseOption) Base() *BaseOption { return b }

func (b *BaseOption) setDefaults() {
	b.Quantity = 1
	b.NeedsMovingHelp = No
}

type TVMountingOption struct {
	BaseOption
	Needs        TVNeeds             `json:"needs" validate:"oneof=MOUNTING UNMOUNTING BOTH"`
	Bracket      Bracket             `json:"bracket" validate:"oneof=OWN FLAT TILT FULL_MOTION"`
	BracketPrice decimal.NullDecimal `json:"bracket_price" validate:"omitempty,gte=0"`
	WallType     WallType            `json:"wall_type" validate:"oneof=DRY_WALL CONCRETE STONE BRICKS"`
}

type FurnitureAssemblyOption struct {
	BaseOption
	LocationID     *int64 `json:"location_id" validate:"omitempty,gt=0"`
	ServiceTypeID  *int64 `json:"service_type_id" validate:"omitempty,gt=0"`
	AssemblyTypeID *int64 `json:"assembly_type_id" validate:"omitempty,gt=0"`
}

type InstallationServiceOption struct {
	BaseOption
	InstallationTypeID *int64          `json:"installation_type_id" validate:"omitempty,gt=0"`
	Location           InstallLocation `json:"location" validate:"oneof=INDOOR OUTDOOR BOTH"`
	PowerNearby        PowerNearby     `json:"power_nearby" validate:"oneof=NO YES NOT_SURE"`
}

type GazeboServiceOption struct {
	BaseOption
	Action        GazeboAction `json:"action" validate:"oneof=INSTALLATION UNINSTALLATION REPLACEMENT COMPLETION"`
	GazeboModelID *int64       `json:"gazebo_model_id" validate:"omitempty,gt=0"`
	Size          *GazeboSize  `json:"size" validate:"omitempty,oneof=10X10 12X12 12X16 12X20 CUSTOM"`
	Anchoring     YesNo        `json:"anchoring" validate:"oneof=YES NO"`
}

func (*TVMountingOption) Kind() Kind          { return KindTVMounting }
func (*FurnitureAssemblyOption) Kind() Kind   { return KindFurnitureAssembly }
func (*InstallationServiceOption) Kind() Kind { return KindInstallation }
func (*GazeboServiceOption) Kind() Kind       { return KindGazebo }

func (*TVMountingOption) isServiceOption()          {}
func (*FurnitureAssemblyOption) isServiceOption()   {}
func (*InstallationServiceOption) isServiceOption() {}
func (*GazeboServiceOption) isServiceOption()       {}

// UnitPrice is the price of one unit: base price plus the moving help
// charge when moving help was requested. Missing amounts count as zero.
func (b *BaseOption) UnitPrice() decimal.Decimal { return unitPrice(b) }

func (b *BaseOption) TotalPrice() decimal.Decimal { return timesQuantity(b.UnitPrice(), b.Quantity) }

// UnitPrice adds the bracket price unless the customer brings their own bracket.
func (o *TVMountingOption) UnitPrice() decimal.Decimal {
	var bracket decimal.NullDecimal
	if o.Bracket != BracketOwn {
		bracket = o.BracketPrice
	}
	return unitPrice(&o.BaseOption, bracket)
}

func (o *TVMountingOption) TotalPrice() decimal.Decimal {
	return timesQuantity(o.UnitPrice(), o.Quantity)
}

func (o *TVMountingOption) DisplayTitle() string          { return displayTitle(o) }
func (o *FurnitureAssemblyOption) DisplayTitle() string   { return displayTitle(o) }
func (o *InstallationServiceOption) DisplayTitle() string { return displayTitle(o) }
func (o *GazeboServiceOption) DisplayTitle() string       { return displayTitle(o) }

func unitPrice(b *BaseOption, surcharges ...decimal.NullDecimal) decimal.Decimal {
	price := orZero(b.Price)
	if b.NeedsMovingHelp == Yes {
		price = price.Add(orZero(b.MovingHelpCharge))
	}
	for _, s := range surcharges {
		price = price.Add(orZero(s))
	}
	return price
}

func timesQuantity(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func displayTitle(o ServiceOption) string {
	if t := o.Base().Title; t != "" {
		return t
	}
	return fmt.Sprintf("%s #%d", o.Kind().Label(), o.Base().ID)
}
