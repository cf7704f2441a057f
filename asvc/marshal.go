package asvc

import (
	"encoding/binary"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/consensys/polycommit/kzg"
)

// WriteTo writes binary encoding of the domain. Only the cardinality is
// written; the roots and inverses are recomputed on read.
func (d *Domain) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, d.Cardinality); err != nil {
		return 0, err
	}
	return 8, nil
}

// ReadFrom reads a domain written by WriteTo and rebuilds its derived fields.
func (d *Domain) ReadFrom(r io.Reader) (int64, error) {
	var card uint64
	if err := binary.Read(r, binary.BigEndian, &card); err != nil {
		return 0, err
	}
	*d = *NewDomain(card)
	return 8, nil
}

// WriteTo writes binary encoding of the proving key: domain, SRS, then the
// Lagrange, subvector and update bases.
func (pk *ProvingKey) WriteTo(w io.Writer) (int64, error) {
	n, err := pk.Domain.WriteTo(w)
	if err != nil {
		return n, err
	}
	m, err := pk.Srs.WriteTo(w)
	n += m
	if err != nil {
		return n, err
	}

	enc := bls12381.NewEncoder(w)
	toEncode := []interface{}{
		pk.Lagrange,
		pk.A,
		pk.U,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return n + enc.BytesWritten(), err
		}
	}
	return n + enc.BytesWritten(), nil
}

// ReadFrom reads a proving key written by WriteTo.
func (pk *ProvingKey) ReadFrom(r io.Reader) (int64, error) {
	pk.Domain = new(Domain)
	n, err := pk.Domain.ReadFrom(r)
	if err != nil {
		return n, err
	}
	pk.Srs = new(kzg.SRS)
	m, err := pk.Srs.ReadFrom(r)
	n += m
	if err != nil {
		return n, err
	}

	dec := bls12381.NewDecoder(r)
	toDecode := []interface{}{
		&pk.Lagrange,
		&pk.A,
		&pk.U,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return n + dec.BytesRead(), err
		}
	}
	return n + dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the verifying key.
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	n, err := vk.Domain.WriteTo(w)
	if err != nil {
		return n, err
	}
	m, err := vk.Kzg.WriteTo(w)
	return n + m, err
}

// ReadFrom reads a verifying key written by WriteTo.
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	vk.Domain = new(Domain)
	n, err := vk.Domain.ReadFrom(r)
	if err != nil {
		return n, err
	}
	m, err := vk.Kzg.ReadFrom(r)
	return n + m, err
}

// WriteTo writes binary encoding of the vector commitment: digest then
// values. The coefficient cache is not written; it is rebuilt on first use.
func (vc *VectorCommitment) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	toEncode := []interface{}{
		&vc.Commitment,
		vc.Values,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom reads a vector commitment written by WriteTo.
func (vc *VectorCommitment) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	toDecode := []interface{}{
		&vc.Commitment,
		&vc.Values,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	vc.p = nil
	return dec.BytesRead(), nil
}

// WriteTo writes binary encoding of the aggregated proof: witness, claim
// count, then each claim in order.
func (agg *AggregatedProof) WriteTo(w io.Writer) (int64, error) {
	enc := bls12381.NewEncoder(w)
	var extra int64

	if err := enc.Encode(&agg.W); err != nil {
		return enc.BytesWritten(), err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(agg.Claims))); err != nil {
		return enc.BytesWritten(), err
	}
	extra += 4
	for k := range agg.Claims {
		if err := enc.Encode(&agg.Claims[k].Commitment); err != nil {
			return enc.BytesWritten() + extra, err
		}
		if err := binary.Write(w, binary.BigEndian, agg.Claims[k].Index); err != nil {
			return enc.BytesWritten() + extra, err
		}
		extra += 8
		if err := enc.Encode(&agg.Claims[k].Value); err != nil {
			return enc.BytesWritten() + extra, err
		}
	}
	return enc.BytesWritten() + extra, nil
}

// ReadFrom reads an aggregated proof written by WriteTo.
func (agg *AggregatedProof) ReadFrom(r io.Reader) (int64, error) {
	dec := bls12381.NewDecoder(r)
	var extra int64

	if err := dec.Decode(&agg.W); err != nil {
		return dec.BytesRead(), err
	}
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return dec.BytesRead(), err
	}
	extra += 4
	agg.Claims = make([]Claim, count)
	for k := range agg.Claims {
		if err := dec.Decode(&agg.Claims[k].Commitment); err != nil {
			return dec.BytesRead() + extra, err
		}
		if err := binary.Read(r, binary.BigEndian, &agg.Claims[k].Index); err != nil {
			return dec.BytesRead() + extra, err
		}
		extra += 8
		if err := dec.Decode(&agg.Claims[k].Value); err != nil {
			return dec.BytesRead() + extra, err
		}
	}
	return dec.BytesRead() + extra, nil
}
