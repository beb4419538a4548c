package registryconst

const (
	// HashLength is the length of the content hash of an assignment (SHA-256).
	HashLength = 32
	// MaxTitleLength is the maximum length of the assignment title. Titles
	// are ASCII only.
	MaxTitleLength = 100
	// MaxAssignmentsPerCourse limits the number of submissions stored per course.
	MaxAssignmentsPerCourse = 100
	// DefaultSubmissionFee is a fee (in GAS fractions) used when deploy data
	// does not override it.
	DefaultSubmissionFee = 50
)

// Failure messages thrown by the contract. Every message starts with the
// canonical description of its error code, off-chain clients match on it.
const (
	ErrorCourseNotFound         = "course not found"
	ErrorDuplicateAssignment    = "duplicate assignment"
	ErrorUnauthorized           = "unauthorized"
	ErrorInvalidHash            = "invalid hash"
	ErrorInvalidTitle           = "invalid title"
	ErrorInvalidStudentID       = "invalid student id"
	ErrorInvalidCourseID        = "invalid course id"
	ErrorAssignmentNotFound     = "assignment not found"
	ErrorPastTimestamp          = "past timestamp"
	ErrorMaxAssignmentsExceeded = "max assignments exceeded"
	ErrorInvalidMetadata        = "invalid metadata"
	ErrorNotificationFailed     = "notification failed"
	ErrorAuditLogFailed         = "audit log failed"
	ErrorTimestampOracleFailed  = "timestamp oracle failed"
	ErrorMetadataStoreFailed    = "metadata store failed"

	// ErrorNotConfigured is thrown when an operation requires the fee
	// authority but it has not been set yet.
	ErrorNotConfigured = ErrorUnauthorized + ": authority is not configured"
	// ErrorAuthorityAlreadySet is thrown on repeated authority setting.
	ErrorAuthorityAlreadySet = ErrorUnauthorized + ": authority is already set"
	// ErrorReservedPrincipal is thrown on attempt to use the zero (burn)
	// account as an authority.
	ErrorReservedPrincipal = ErrorUnauthorized + ": reserved principal"
	// ErrorNotOwner is thrown when the assignment is edited without the
	// witness of its student.
	ErrorNotOwner = ErrorUnauthorized + ": not an assignment owner"
	// ErrorNegativeFee is thrown on attempt to set a negative submission fee.
	ErrorNegativeFee = ErrorInvalidMetadata + ": negative fee"
	// ErrorFeeTransferFailed is thrown when the GAS contract rejects the fee
	// transfer to the authority.
	ErrorFeeTransferFailed = ErrorUnauthorized + ": submission fee transfer failed"
)

// Storage layout of the registry contract. Singleton keys start with upper
// case letters, so they never share a prefix with indexed records.
const (
	AuthorityKey = "Authority"
	FeeKey       = "Fee"
	CounterKey   = "Counter"

	AssignmentPrefix = 'a'
	HashPrefix       = 'h'
	CoursePrefix     = 'c'
	StudentPrefix    = 's'
	UpdatePrefix     = 'u'
	VerifiedPrefix   = 'v'
)
