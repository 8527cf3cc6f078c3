// Copyright 2024 OneStore-go authors.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package onestore

// JCID is the 32-bit classifier on every property set (spec §3).
type JCID uint32

// PropertySet is { jcid, properties } (spec §3). Property order within
// the set is not semantically significant; iteration order for
// emission purposes follows decode (key-list) order, which
// decodePropertySet preserves in Order.
type PropertySet struct {
	JCID       JCID
	Properties map[PropertyID]Property
	Order      []PropertyID
}

// Get looks up a property by id.
func (ps *PropertySet) Get(id PropertyID) (Property, bool) {
	p, ok := ps.Properties[id]
	return p, ok
}

// decodePropertySet decodes a property-set body (spec §4.5): a
// count:u16, then that many packed u32 keys, then, in the same order,
// that many value bodies whose size depends on their type tag.
// Object-reference values are kept as raw CompactIDs; resolving them
// to ExGUIDs and dereferencing them into full objects is deferred to
// the object-tree builder so cycles can be detected there (spec §4.5,
// §4.8).
func decodePropertySet(r *Reader, jcid JCID) (*PropertySet, error) {
	count, err := r.U16()
	if err != nil {
		return nil, err
	}

	keys := make([]propertyKey, count)
	for i := range keys {
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		keys[i] = propertyKey(v)
	}

	ps := &PropertySet{
		JCID:       jcid,
		Properties: make(map[PropertyID]Property, count),
		Order:      make([]PropertyID, 0, count),
	}

	for _, key := range keys {
		prop := Property{ID: key.id(), Type: key.typ()}

		switch prop.Type {
		case PropertyTypeNoData:
			// no payload
		case PropertyTypeBool:
			prop.Bool = key.boolValue()
		case PropertyTypeOneByte:
			v, err := r.U8()
			if err != nil {
				return nil, err
			}
			prop.U8 = v
		case PropertyTypeTwoBytes:
			v, err := r.U16()
			if err != nil {
				return nil, err
			}
			prop.U16 = v
		case PropertyTypeFourBytes:
			v, err := r.U32()
			if err != nil {
				return nil, err
			}
			prop.U32 = v
		case PropertyTypeEightBytes:
			v, err := r.U64()
			if err != nil {
				return nil, err
			}
			prop.U64 = v
		case PropertyTypeFourBytesLengthPrefixedData:
			n, err := r.U32()
			if err != nil {
				return nil, err
			}
			data, err := r.Bytes(int(n))
			if err != nil {
				return nil, err
			}
			buf := make([]byte, len(data))
			copy(buf, data)
			prop.Data = buf
		case PropertyTypeObjectID:
			cid, err := r.ReadCompactID()
			if err != nil {
				return nil, err
			}
			prop.ObjectID = cid
		case PropertyTypeArrayOfObjectIDs:
			n, err := r.U32()
			if err != nil {
				return nil, err
			}
			ids := make([]CompactID, n)
			for i := range ids {
				cid, err := r.ReadCompactID()
				if err != nil {
					return nil, err
				}
				ids[i] = cid
			}
			prop.ObjectIDs = ids
		case PropertyTypeArrayOfObjectSpaceIDs, PropertyTypeArrayOfContextIDs:
			n, err := r.U32()
			if err != nil {
				return nil, err
			}
			ids := make([]ExGUID, n)
			for i := range ids {
				eg, err := r.ReadExGUID()
				if err != nil {
					return nil, err
				}
				ids[i] = eg
			}
			prop.ContextIDs = ids
		case PropertyTypeObjectSpaceID:
			eg, err := r.ReadExGUID()
			if err != nil {
				return nil, err
			}
			prop.ObjectSpaceID = eg
		case PropertyTypeContextID:
			eg, err := r.ReadExGUID()
			if err != nil {
				return nil, err
			}
			prop.ContextID = eg
		case PropertyTypePropertySet:
			jcidInner, err := r.U32()
			if err != nil {
				return nil, err
			}
			inner, err := decodePropertySet(r, JCID(jcidInner))
			if err != nil {
				return nil, err
			}
			prop.PropertySet = inner
		case PropertyTypeArrayOfPropertyValues:
			n, err := r.U32()
			if err != nil {
				return nil, err
			}
			sets := make([]*PropertySet, n)
			for i := range sets {
				jcidInner, err := r.U32()
				if err != nil {
					return nil, err
				}
				inner, err := decodePropertySet(r, JCID(jcidInner))
				if err != nil {
					return nil, err
				}
				sets[i] = inner
			}
			prop.PropertySets = sets
		default:
			return nil, ErrUnexpectedFileNode
		}

		ps.Properties[prop.ID] = prop
		ps.Order = append(ps.Order, prop.ID)
	}

	return ps, nil
}
