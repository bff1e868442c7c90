package invariant

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gtdvccc/invariant-sim/pkg/decimal"
)

// Anchor account discriminators: sha256("account:<Name>")[:8]
var (
	PoolDiscriminator     = []byte{241, 154, 109, 4, 17, 177, 109, 188}
	TickDiscriminator     = []byte{176, 94, 67, 247, 133, 173, 7, 115}
	PositionDiscriminator = []byte{170, 188, 143, 228, 122, 64, 247, 208}
	TickmapDiscriminator  = []byte{236, 6, 101, 196, 85, 189, 0, 227}
)

// accountReader reads packed little-endian fields and keeps the first error
type accountReader struct {
	dec *bin.Decoder
	err error
}

func newAccountReader(data []byte, discriminator []byte, size int) (*accountReader, error) {
	if len(data) < size {
		return nil, fmt.Errorf("account data too short: %d < %d", len(data), size)
	}
	if !bytes.Equal(data[:DISCRIMINATOR_SIZE], discriminator) {
		return nil, fmt.Errorf("unexpected account discriminator %v", data[:DISCRIMINATOR_SIZE])
	}
	return &accountReader{dec: bin.NewBinDecoder(data[DISCRIMINATOR_SIZE:])}, nil
}

func (r *accountReader) key() solana.PublicKey {
	if r.err != nil {
		return solana.PublicKey{}
	}
	var raw []byte
	raw, r.err = r.dec.ReadNBytes(solana.PublicKeyLength)
	if r.err != nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(raw)
}

func (r *accountReader) decimal() decimal.Decimal {
	var d decimal.Decimal
	if r.err == nil {
		r.err = d.UnmarshalWithDecoder(r.dec)
	}
	return d
}

func (r *accountReader) u64() (v uint64) {
	if r.err == nil {
		v, r.err = r.dec.ReadUint64(binary.LittleEndian)
	}
	return v
}

func (r *accountReader) i32() (v int32) {
	if r.err == nil {
		v, r.err = r.dec.ReadInt32(binary.LittleEndian)
	}
	return v
}

func (r *accountReader) u16() (v uint16) {
	if r.err == nil {
		v, r.err = r.dec.ReadUint16(binary.LittleEndian)
	}
	return v
}

func (r *accountReader) u8() (v uint8) {
	if r.err == nil {
		v, r.err = r.dec.ReadUint8()
	}
	return v
}

func (r *accountReader) boolean() (v bool) {
	if r.err == nil {
		v, r.err = r.dec.ReadBool()
	}
	return v
}

// Decode parses a pool account
func (p *Pool) Decode(data []byte) error {
	r, err := newAccountReader(data, PoolDiscriminator, POOL_ACCOUNT_SIZE)
	if err != nil {
		return err
	}
	p.TokenX = r.key()
	p.TokenY = r.key()
	p.TokenXReserve = r.key()
	p.TokenYReserve = r.key()
	p.PositionIterator = r.decimal()
	p.TickSpacing = r.u16()
	p.Fee = r.decimal()
	p.ProtocolFee = r.decimal()
	p.Liquidity = r.decimal()
	p.SqrtPrice = r.decimal()
	p.CurrentTickIndex = r.i32()
	p.Tickmap = r.key()
	p.FeeGrowthGlobalX = r.decimal()
	p.FeeGrowthGlobalY = r.decimal()
	p.FeeProtocolTokenX = r.u64()
	p.FeeProtocolTokenY = r.u64()
	p.SecondsPerLiquidity = r.decimal()
	p.StartTimestamp = r.u64()
	p.LastTimestamp = r.u64()
	p.FeeReceiver = r.key()
	p.Oracle = r.key()
	p.OracleInitialized = r.boolean()
	p.Bump = r.u8()
	if r.err != nil {
		return fmt.Errorf("failed to decode pool: %w", r.err)
	}
	return nil
}

// Decode parses a tick account
func (t *Tick) Decode(data []byte) error {
	r, err := newAccountReader(data, TickDiscriminator, TICK_ACCOUNT_SIZE)
	if err != nil {
		return err
	}
	t.Pool = r.key()
	t.Index = r.i32()
	t.Sign = r.boolean()
	t.LiquidityChange = r.decimal()
	t.LiquidityGross = r.decimal()
	t.SqrtPrice = r.decimal()
	t.FeeGrowthOutsideX = r.decimal()
	t.FeeGrowthOutsideY = r.decimal()
	t.SecondsPerLiquidityOutside = r.decimal()
	t.SecondsOutside = r.u64()
	t.Bump = r.u8()
	if r.err != nil {
		return fmt.Errorf("failed to decode tick: %w", r.err)
	}
	return nil
}

// Decode parses a position account
func (p *Position) Decode(data []byte) error {
	r, err := newAccountReader(data, PositionDiscriminator, POSITION_ACCOUNT_SIZE)
	if err != nil {
		return err
	}
	p.Owner = r.key()
	p.Pool = r.key()
	p.ID = r.decimal()
	p.Liquidity = r.decimal()
	p.LowerTickIndex = r.i32()
	p.UpperTickIndex = r.i32()
	p.FeeGrowthInsideX = r.decimal()
	p.FeeGrowthInsideY = r.decimal()
	p.SecondsPerLiquidityInside = r.decimal()
	p.LastSlot = r.u64()
	p.TokensOwedX = r.decimal()
	p.TokensOwedY = r.decimal()
	p.Bump = r.u8()
	if r.err != nil {
		return fmt.Errorf("failed to decode position: %w", r.err)
	}
	return nil
}

// Decode parses a tickmap account
func (t *Tickmap) Decode(data []byte) error {
	if len(data) < TICKMAP_ACCOUNT_SIZE {
		return fmt.Errorf("tickmap data too short: %d < %d", len(data), TICKMAP_ACCOUNT_SIZE)
	}
	if !bytes.Equal(data[:DISCRIMINATOR_SIZE], TickmapDiscriminator) {
		return fmt.Errorf("unexpected account discriminator %v", data[:DISCRIMINATOR_SIZE])
	}
	copy(t.Bitmap[:], data[DISCRIMINATOR_SIZE:TICKMAP_ACCOUNT_SIZE])
	return nil
}

// accountWriter mirrors accountReader for building account data
type accountWriter struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

func newAccountWriter(discriminator []byte) *accountWriter {
	w := &accountWriter{}
	w.enc = bin.NewBinEncoder(&w.buf)
	w.raw(discriminator)
	return w
}

func (w *accountWriter) raw(b []byte) {
	if w.err == nil {
		w.err = w.enc.WriteBytes(b, false)
	}
}

func (w *accountWriter) key(k solana.PublicKey) { w.raw(k.Bytes()) }

func (w *accountWriter) decimal(d decimal.Decimal) {
	if w.err == nil {
		w.err = d.MarshalWithEncoder(w.enc)
	}
}

func (w *accountWriter) u64(v uint64) {
	if w.err == nil {
		w.err = w.enc.WriteUint64(v, binary.LittleEndian)
	}
}

func (w *accountWriter) i32(v int32) {
	if w.err == nil {
		w.err = w.enc.WriteInt32(v, binary.LittleEndian)
	}
}

func (w *accountWriter) u16(v uint16) {
	if w.err == nil {
		w.err = w.enc.WriteUint16(v, binary.LittleEndian)
	}
}

func (w *accountWriter) u8(v uint8) {
	if w.err == nil {
		w.err = w.enc.WriteUint8(v)
	}
}

func (w *accountWriter) boolean(v bool) {
	if w.err == nil {
		w.err = w.enc.WriteBool(v)
	}
}

func (w *accountWriter) result() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// Encode serializes the pool into its account layout
func (p *Pool) Encode() ([]byte, error) {
	w := newAccountWriter(PoolDiscriminator)
	w.key(p.TokenX)
	w.key(p.TokenY)
	w.key(p.TokenXReserve)
	w.key(p.TokenYReserve)
	w.decimal(p.PositionIterator)
	w.u16(p.TickSpacing)
	w.decimal(p.Fee)
	w.decimal(p.ProtocolFee)
	w.decimal(p.Liquidity)
	w.decimal(p.SqrtPrice)
	w.i32(p.CurrentTickIndex)
	w.key(p.Tickmap)
	w.decimal(p.FeeGrowthGlobalX)
	w.decimal(p.FeeGrowthGlobalY)
	w.u64(p.FeeProtocolTokenX)
	w.u64(p.FeeProtocolTokenY)
	w.decimal(p.SecondsPerLiquidity)
	w.u64(p.StartTimestamp)
	w.u64(p.LastTimestamp)
	w.key(p.FeeReceiver)
	w.key(p.Oracle)
	w.boolean(p.OracleInitialized)
	w.u8(p.Bump)
	return w.result()
}

// Encode serializes the tick into its account layout
func (t *Tick) Encode() ([]byte, error) {
	w := newAccountWriter(TickDiscriminator)
	w.key(t.Pool)
	w.i32(t.Index)
	w.boolean(t.Sign)
	w.decimal(t.LiquidityChange)
	w.decimal(t.LiquidityGross)
	w.decimal(t.SqrtPrice)
	w.decimal(t.FeeGrowthOutsideX)
	w.decimal(t.FeeGrowthOutsideY)
	w.decimal(t.SecondsPerLiquidityOutside)
	w.u64(t.SecondsOutside)
	w.u8(t.Bump)
	return w.result()
}

// Encode serializes the position into its account layout
func (p *Position) Encode() ([]byte, error) {
	w := newAccountWriter(PositionDiscriminator)
	w.key(p.Owner)
	w.key(p.Pool)
	w.decimal(p.ID)
	w.decimal(p.Liquidity)
	w.i32(p.LowerTickIndex)
	w.i32(p.UpperTickIndex)
	w.decimal(p.FeeGrowthInsideX)
	w.decimal(p.FeeGrowthInsideY)
	w.decimal(p.SecondsPerLiquidityInside)
	w.u64(p.LastSlot)
	w.decimal(p.TokensOwedX)
	w.decimal(p.TokensOwedY)
	w.u8(p.Bump)
	return w.result()
}

// Encode serializes the tickmap into its account layout
func (t *Tickmap) Encode() []byte {
	data := make([]byte, 0, TICKMAP_ACCOUNT_SIZE)
	data = append(data, TickmapDiscriminator...)
	return append(data, t.Bitmap[:]...)
}
