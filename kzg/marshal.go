package kzg

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// WriteTo writes binary encoding of the SRS: the G1 powers then the G2 powers.
// The verifying key's G1 view is not written twice; ReadFrom restores the
// aliasing.
func (srs *SRS) WriteTo(w io.Writer) (int64, error) {
	return srs.writeTo(w)
}

// WriteRawTo writes binary encoding of the SRS without point compression
func (srs *SRS) WriteRawTo(w io.Writer) (int64, error) {
	return srs.writeTo(w, bls12381.RawEncoding())
}

func (srs *SRS) writeTo(w io.Writer, options ...func(*bls12381.Encoder)) (int64, error) {
	enc := bls12381.NewEncoder(w, options...)
	toEncode := []interface{}{
		srs.Pk.G1,
		srs.Vk.G2,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom decodes SRS data from reader
func (srs *SRS) ReadFrom(r io.Reader) (int64, error) {
	return srs.readFrom(r)
}

// UnsafeReadFrom decodes SRS data from reader without performing subgroup
// checks on the decoded points
func (srs *SRS) UnsafeReadFrom(r io.Reader) (int64, error) {
	return srs.readFrom(r, bls12381.NoSubgroupChecks())
}

func (srs *SRS) readFrom(r io.Reader, options ...func(*bls12381.Decoder)) (int64, error) {
	dec := bls12381.NewDecoder(r, options...)
	toDecode := []interface{}{
		&srs.Pk.G1,
		&srs.Vk.G2,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	srs.Vk.G1 = srs.Pk.G1
	return dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the ProvingKey
func (pk *ProvingKey) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	if err := enc.Encode(pk.G1); err != nil {
		return enc.BytesWritten(), err
	}
	return enc.BytesWritten(), nil
}

// ReadFrom decodes ProvingKey data from reader
func (pk *ProvingKey) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	if err := dec.Decode(&pk.G1); err != nil {
		return dec.BytesRead(), err
	}
	return dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the VerifyingKey
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	toEncode := []interface{}{
		vk.G1,
		vk.G2,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom decodes VerifyingKey data from reader
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	toDecode := []interface{}{
		&vk.G1,
		&vk.G2,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the OpeningProof
func (proof *OpeningProof) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	toEncode := []interface{}{
		&proof.Point,
		&proof.ClaimedValue,
		&proof.H,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom decodes OpeningProof data from reader
func (proof *OpeningProof) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	toDecode := []interface{}{
		&proof.Point,
		&proof.ClaimedValue,
		&proof.H,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the BatchProof
func (proof *BatchProof) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	toEncode := []interface{}{
		proof.Points,
		proof.ClaimedValues,
		&proof.H,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom decodes BatchProof data from reader
func (proof *BatchProof) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	toDecode := []interface{}{
		&proof.Points,
		&proof.ClaimedValues,
		&proof.H,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}
