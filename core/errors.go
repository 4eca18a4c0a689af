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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidOffsets indicates CharEnd is not greater than CharStart.
	ErrInvalidOffsets = errors.New("char end must be greater than char start")

	// ErrEmptySourceURI indicates the SourceURI field is empty.
	ErrEmptySourceURI = errors.New("source URI cannot be empty")

	// ErrEmptyCorpusRef indicates the CorpusRef field is empty.
	ErrEmptyCorpusRef = errors.New("corpus ref cannot be empty")

	// ErrInvalidStatus indicates an invalid DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")
)
