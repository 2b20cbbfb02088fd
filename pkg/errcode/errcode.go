package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBBadIdentifierError
	DBQueryError
	DBExecError
	DBTxError
	DBAttachError

	// Clone errors
	CloneExistsCheckError
	ClonePromptError
	CloneDropError
	CloneCreateError
	CloneStructureError

	// Subset errors
	SubsetRegionsError
	SubsetRefGenomeError
	SubsetMetaError
	SubsetStepError
	SubsetEmitError

	// Verify errors
	VerifyEdgeError
	VerifyClosureError
)
