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


package index

import "errors"

var (
	// ErrConflict indicates the backend rejected an import because a
	// concurrent operation on the same corpus is in flight.
	ErrConflict = errors.New("concurrent index operation in progress")

	// ErrNotFound indicates the referenced file handle does not exist.
	ErrNotFound = errors.New("index file not found")

	// ErrUnavailable indicates the index service or its store cannot be
	// reached.
	ErrUnavailable = errors.New("index service unavailable")

	// ErrFileServiceRequired indicates a nil FileService was passed to
	// NewGateway.
	ErrFileServiceRequired = errors.New("file service is required")

	// ErrEmbedderRequired indicates a nil embedding client was passed to
	// NewGateway.
	ErrEmbedderRequired = errors.New("embedding client is required")
)
