// Copyright 2026 Lattice Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted core types. Timestamps travel as
// microsecond Unix values, so sub-microsecond precision is dropped on a
// round trip.

// IDMUS serializes IDs as varint-encoded uint64.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// DocumentMUS serializes Documents field by field, in declaration order.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.SourceURI, bs[n:])
	n += ord.String.Marshal(v.CorpusRef, bs[n:])
	n += varint.Int64.Marshal(int64(v.Status), bs[n:])
	n += ord.String.Marshal(v.IndexFileRef, bs[n:])
	n += ord.String.Marshal(v.ErrorDetail, bs[n:])
	n += TimeMUS.Marshal(v.CreatedAt, bs[n:])
	n += TimeMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SourceURI, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CorpusRef, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var status int64
	if status, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	v.Status = DocumentStatus(status)
	n += n1
	if v.IndexFileRef, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ErrorDetail, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.SourceURI)
	size += ord.String.Size(v.CorpusRef)
	size += varint.Int64.Size(int64(v.Status))
	size += ord.String.Size(v.IndexFileRef)
	size += ord.String.Size(v.ErrorDetail)
	size += TimeMUS.Size(v.CreatedAt)
	size += TimeMUS.Size(v.UpdatedAt)
	return size
}

// TimeMUS serializes timestamps as varint-encoded Unix microseconds, UTC on
// the way back out.
var TimeMUS = timeMUS{}

type timeMUS struct{}

func (timeMUS) Marshal(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func (timeMUS) Size(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}
