package sla

import "github.com/tinylib/msgp/msgp"

// Persisted records are flat MessagePack arrays of their scalar fields:
// position components first, then the remaining scalars, then flags.

const (
	supportPointFields = 5
	drainHoleFields    = 8
)

// MarshalMsg implements msgp.Marshaler as [x, y, z, head_front_radius,
// is_new_island].
func (z *SupportPoint) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, supportPointFields)
	o = msgp.AppendFloat32(o, z.Pos.X)
	o = msgp.AppendFloat32(o, z.Pos.Y)
	o = msgp.AppendFloat32(o, z.Pos.Z)
	o = msgp.AppendFloat32(o, z.HeadFrontRadius)
	o = msgp.AppendBool(o, z.IsNewIsland)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (z *SupportPoint) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var n uint32
	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	if n != supportPointFields {
		err = msgp.ArrayError{Wanted: supportPointFields, Got: n}
		return
	}
	fields := [...]*float32{&z.Pos.X, &z.Pos.Y, &z.Pos.Z, &z.HeadFrontRadius}
	names := [...]string{"X", "Y", "Z", "HeadFrontRadius"}
	for i, f := range fields {
		*f, bts, err = msgp.ReadFloat32Bytes(bts)
		if err != nil {
			err = msgp.WrapError(err, names[i])
			return
		}
	}
	z.IsNewIsland, bts, err = msgp.ReadBoolBytes(bts)
	if err != nil {
		err = msgp.WrapError(err, "IsNewIsland")
		return
	}
	o = bts
	return
}

// Msgsize returns an upper bound on the encoded size.
func (z *SupportPoint) Msgsize() int {
	return msgp.ArrayHeaderSize + 4*msgp.Float32Size + msgp.BoolSize
}

// MarshalMsg implements msgp.Marshaler as [px, py, pz, nx, ny, nz,
// radius, height].
func (z *DrainHole) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, drainHoleFields)
	for _, f := range [...]float32{
		z.Pos.X, z.Pos.Y, z.Pos.Z,
		z.Normal.X, z.Normal.Y, z.Normal.Z,
		z.Radius, z.Height,
	} {
		o = msgp.AppendFloat32(o, f)
	}
	return
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (z *DrainHole) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var n uint32
	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	if n != drainHoleFields {
		err = msgp.ArrayError{Wanted: drainHoleFields, Got: n}
		return
	}
	fields := [...]*float32{
		&z.Pos.X, &z.Pos.Y, &z.Pos.Z,
		&z.Normal.X, &z.Normal.Y, &z.Normal.Z,
		&z.Radius, &z.Height,
	}
	for i, f := range fields {
		*f, bts, err = msgp.ReadFloat32Bytes(bts)
		if err != nil {
			err = msgp.WrapError(err, i)
			return
		}
	}
	o = bts
	return
}

// Msgsize returns an upper bound on the encoded size.
func (z *DrainHole) Msgsize() int {
	return msgp.ArrayHeaderSize + drainHoleFields*msgp.Float32Size
}

// MarshalMsg implements msgp.Marshaler as an array of point tuples.
func (z SupportPoints) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, uint32(len(z)))
	for i := range z {
		o, err = z[i].MarshalMsg(o)
		if err != nil {
			err = msgp.WrapError(err, i)
			return
		}
	}
	return
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (z *SupportPoints) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var n uint32
	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	// Every tuple takes at least one byte.
	if int64(n) > int64(len(bts)) {
		err = msgp.ErrShortBytes
		return
	}
	if cap(*z) >= int(n) {
		*z = (*z)[:n]
	} else {
		*z = make(SupportPoints, n)
	}
	for i := range *z {
		bts, err = (*z)[i].UnmarshalMsg(bts)
		if err != nil {
			err = msgp.WrapError(err, i)
			return
		}
	}
	o = bts
	return
}

// Msgsize returns an upper bound on the encoded size.
func (z SupportPoints) Msgsize() int {
	return msgp.ArrayHeaderSize + len(z)*(&SupportPoint{}).Msgsize()
}

// MarshalMsg implements msgp.Marshaler as an array of hole tuples.
func (z DrainHoles) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, uint32(len(z)))
	for i := range z {
		o, err = z[i].MarshalMsg(o)
		if err != nil {
			err = msgp.WrapError(err, i)
			return
		}
	}
	return
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (z *DrainHoles) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var n uint32
	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	// Every tuple takes at least one byte.
	if int64(n) > int64(len(bts)) {
		err = msgp.ErrShortBytes
		return
	}
	if cap(*z) >= int(n) {
		*z = (*z)[:n]
	} else {
		*z = make(DrainHoles, n)
	}
	for i := range *z {
		bts, err = (*z)[i].UnmarshalMsg(bts)
		if err != nil {
			err = msgp.WrapError(err, i)
			return
		}
	}
	o = bts
	return
}

// Msgsize returns an upper bound on the encoded size.
func (z DrainHoles) Msgsize() int {
	return msgp.ArrayHeaderSize + len(z)*(&DrainHole{}).Msgsize()
}
