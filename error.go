package modbus

// ErrorSource identifies which half of the engine produced an ErrorInfo.
type ErrorSource byte

const (
	// SourceNone marks an ErrorInfo carrying no error (Ok).
	SourceNone ErrorSource = iota
	// SourceGeneral is a catch-all source not tied to one engine stage.
	// The engine's own entry points never return it; request builders
	// report bad arguments under SourceRequestBuild.
	SourceGeneral
	// SourceAllocator marks a failure returned by the configured Allocator.
	SourceAllocator
	// SourceRequestBuild marks a failure while a master builds a request.
	SourceRequestBuild
	// SourceResponseParse marks a failure while a master parses a response,
	// or a slave parses an incoming request.
	SourceResponseParse
	// SourceOther covers anything not captured by the above, such as a
	// user-supplied data callback returning an error.
	SourceOther
)

// ErrorKind is a specific error within an ErrorSource.
type ErrorKind byte

const (
	KindOK ErrorKind = iota
	KindAlloc
	KindIllegalFunction
	KindIllegalDataAddress
	KindIllegalDataValue
	KindSlaveFailure
	KindOther
	KindRequestBuildFail
	KindResponseParseFail
	KindBadCRC
	KindBadFrame
	KindBadArgument
)

// ErrorInfo is the packed 16-bit {source, kind} value every engine entry
// point returns. Ok() is true if and only if Source == SourceNone.
type ErrorInfo struct {
	Source ErrorSource
	Kind   ErrorKind
}

// Ok is the zero-value ErrorInfo representing success.
var Ok = ErrorInfo{Source: SourceNone, Kind: KindOK}

// IsOk reports whether info represents success.
func (info ErrorInfo) IsOk() bool {
	return info.Source == SourceNone
}

// Error implements the error interface so ErrorInfo can be returned or
// wrapped anywhere a plain error is expected.
func (info ErrorInfo) Error() string {
	if info.IsOk() {
		return "modbus: ok"
	}
	return "modbus: " + info.Kind.String()
}

func (k ErrorKind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindAlloc:
		return "allocator failure"
	case KindIllegalFunction:
		return "illegal function"
	case KindIllegalDataAddress:
		return "illegal data address"
	case KindIllegalDataValue:
		return "illegal data value"
	case KindSlaveFailure:
		return "slave device failure"
	case KindOther:
		return "other error"
	case KindRequestBuildFail:
		return "request build failed"
	case KindResponseParseFail:
		return "response parse failed"
	case KindBadCRC:
		return "bad crc"
	case KindBadFrame:
		return "bad frame"
	case KindBadArgument:
		return "bad argument"
	}
	return "unknown error kind"
}

func errInfo(source ErrorSource, kind ErrorKind) ErrorInfo {
	return ErrorInfo{Source: source, Kind: kind}
}
