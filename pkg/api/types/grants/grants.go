package grants

import (
	"bytes"
	"encoding/json"

	kgrants "github.com/rmd-dashboard/grants/pkg/grants"
	"github.com/shopspring/decimal"
)

// object writes a JSON object keeping the order of keys.
type object struct {
	buf bytes.Buffer
	n   int
}

func (o *object) add(key string, value any) error {
	if o.n == 0 {
		o.buf.WriteByte('{')
	} else {
		o.buf.WriteByte(',')
	}
	o.n++

	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(v)
	return nil
}

func (o *object) bytes() []byte {
	if o.n == 0 {
		return []byte("{}")
	}
	o.buf.WriteByte('}')
	return o.buf.Bytes()
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Overview is the overview object of a program, in the order of its metrics.
type Overview kgrants.Overview

func (ov Overview) MarshalJSON() ([]byte, error) {
	o := &object{}
	for _, m := range ov {
		if err := o.add(m.Name, number(m.Value)); err != nil {
			return nil, err
		}
	}
	return o.bytes(), nil
}

// Bucket is one group of a grouping query, keyed as the group tells.
type Bucket struct {
	Group  kgrants.Group
	Bucket kgrants.Bucket
}

func (b Bucket) MarshalJSON() ([]byte, error) {
	o := &object{}
	if err := o.add(b.Group.LabelKey, b.Bucket.Label); err != nil {
		return nil, err
	}
	if err := o.add(b.Group.CountName(), b.Bucket.Projects); err != nil {
		return nil, err
	}
	if b.Group.WithAmount {
		if err := o.add("amount", number(b.Bucket.Amount)); err != nil {
			return nil, err
		}
	}
	if b.Group.WithReleased {
		if err := o.add("released", number(b.Bucket.Released)); err != nil {
			return nil, err
		}
	}
	return o.bytes(), nil
}

func ComposeBuckets(g kgrants.Group, buckets []kgrants.Bucket) []Bucket {
	bs := make([]Bucket, len(buckets))
	for i := range buckets {
		bs[i] = Bucket{Group: g, Bucket: buckets[i]}
	}
	return bs
}

// Trend is one year of yearly trends.
type Trend struct {
	Trend        kgrants.Trend
	WithReleased bool
}

func (t Trend) MarshalJSON() ([]byte, error) {
	o := &object{}
	if err := o.add("year", t.Trend.Year); err != nil {
		return nil, err
	}
	if err := o.add("projects", t.Trend.Projects); err != nil {
		return nil, err
	}
	if err := o.add("amount", number(t.Trend.Amount)); err != nil {
		return nil, err
	}
	if t.WithReleased {
		if err := o.add("released", number(t.Trend.Released)); err != nil {
			return nil, err
		}
	}
	return o.bytes(), nil
}

func ComposeTrends(p *kgrants.Program, trends []kgrants.Trend) []Trend {
	ts := make([]Trend, len(trends))
	for i := range trends {
		ts[i] = Trend{Trend: trends[i], WithReleased: p.Report.ReleasedColumn != ""}
	}
	return ts
}

type UploadResult struct {
	Message          string `json:"message"`
	RecordsProcessed int    `json:"recordsProcessed"`
	ReplaceAll       bool   `json:"replaceAll"`
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
