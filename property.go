// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

import (
	"fmt"
	"math"
)

// PropertyType is the 5-bit type tag packed into a property's key
// (spec §3, MS-ONESTORE 2.6.1 PropertyID.type).
type PropertyType uint8

const (
	PropertyTypeNoData                          PropertyType = 0x01
	PropertyTypeBool                             PropertyType = 0x02
	PropertyTypeOneByte                          PropertyType = 0x03
	PropertyTypeTwoBytes                         PropertyType = 0x04
	PropertyTypeFourBytes                        PropertyType = 0x05
	PropertyTypeEightBytes                       PropertyType = 0x06
	PropertyTypeFourBytesLengthPrefixedData      PropertyType = 0x07
	PropertyTypeObjectID                         PropertyType = 0x08
	PropertyTypeArrayOfObjectIDs                 PropertyType = 0x09
	PropertyTypeArrayOfObjectSpaceIDs            PropertyType = 0x0A
	PropertyTypeArrayOfContextIDs                PropertyType = 0x0B
	PropertyTypeObjectSpaceID                    PropertyType = 0x0C
	PropertyTypeContextID                        PropertyType = 0x0D
	PropertyTypeArrayOfPropertyValues            PropertyType = 0x10
	PropertyTypePropertySet                      PropertyType = 0x11
)

// PropertyID is the 26-bit numeric property identifier, with the
// property's type tag and bool-value flag unpacked out of the raw key.
type PropertyID uint32

// propertyKey is the raw, still-packed 32-bit key read from a
// property set's key list (spec §4.5): 26 bits of id, 5 bits of type,
// 1 bit of inline bool value.
type propertyKey uint32

func (k propertyKey) id() PropertyID     { return PropertyID(k & 0x03FFFFFF) }
func (k propertyKey) typ() PropertyType  { return PropertyType((k >> 26) & 0x1F) }
func (k propertyKey) boolValue() bool    { return k&0x80000000 != 0 }

// Property is a single (key, type, value) triple inside a property set
// (spec §3). Exactly one of the typed fields is meaningful, selected by
// Type.
type Property struct {
	ID   PropertyID
	Type PropertyType

	Bool       bool
	U8         uint8
	U16        uint16
	U32        uint32
	U64        uint64
	ObjectID   CompactID
	ObjectIDs  []CompactID
	ObjectSpaceID ExGUID
	ContextID  ExGUID
	ContextIDs []ExGUID
	PropertySet *PropertySet
	PropertySets []*PropertySet
	Data       []byte // raw payload for FourBytesLengthPrefixedData (string or blob)
}

// AsUTF16String decodes Data as a length-prefixed UTF-16LE string. Only
// meaningful when Type is PropertyTypeFourBytesLengthPrefixedData and
// the caller's property-id schema knows this one holds text.
func (p Property) AsUTF16String() (string, error) {
	return DecodeUTF16String(p.Data)
}

// AsFloat32 reinterprets a four-byte value as an IEEE-754 float, for
// property ids known to carry floating point data (spec §3, "four-byte
// float").
func (p Property) AsFloat32() float32 {
	return math.Float32frombits(p.U32)
}

func (t PropertyType) String() string {
	switch t {
	case PropertyTypeNoData:
		return "NoData"
	case PropertyTypeBool:
		return "Bool"
	case PropertyTypeOneByte:
		return "OneByte"
	case PropertyTypeTwoBytes:
		return "TwoBytes"
	case PropertyTypeFourBytes:
		return "FourBytes"
	case PropertyTypeEightBytes:
		return "EightBytes"
	case PropertyTypeFourBytesLengthPrefixedData:
		return "FourBytesLengthPrefixedData"
	case PropertyTypeObjectID:
		return "ObjectID"
	case PropertyTypeArrayOfObjectIDs:
		return "ArrayOfObjectIDs"
	case PropertyTypeArrayOfObjectSpaceIDs:
		return "ArrayOfObjectSpaceIDs"
	case PropertyTypeArrayOfContextIDs:
		return "ArrayOfContextIDs"
	case PropertyTypeObjectSpaceID:
		return "ObjectSpaceID"
	case PropertyTypeContextID:
		return "ContextID"
	case PropertyTypeArrayOfPropertyValues:
		return "ArrayOfPropertyValues"
	case PropertyTypePropertySet:
		return "PropertySet"
	default:
		return fmt.Sprintf("PropertyType(0x%02X)", uint8(t))
	}
}
