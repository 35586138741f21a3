package status

// ErrorCode classifies API errors in a stable, numeric way.
type ErrorCode int

// Client/validation errors start at 0; internal errors start at 1000.
const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
	NotFound                                             // 2
)

const (
	Internal          ErrorCode = InternalErrorBase + iota // 1000
	UploadStoreFailed                                      // 1001
	IngestFailed                                           // 1002
	SearchFailed                                           // 1003
	AnswerFailed                                           // 1004
)

// SuccessCode classifies API success responses.
type SuccessCode int

const (
	OK SuccessCode = 200
)
