package gotest

// go test invocation constants
const (
	DefaultGoBinary = "go"

	TestCommand   = "test"
	JSONFlag      = "-json"
	VerboseFlag   = "-v"
	TimeoutFlag   = "-timeout"
	CountFlag     = "-count"
	RunFlag       = "-run"
	ParallelFlag  = "-parallel"
	TagsFlag      = "-tags"
	RaceFlag      = "-race"
	ShortFlag     = "-short"
	FailFastFlag  = "-failfast"
	DisableCache  = "1"
	JSONExtension = ".json"

	// MaxReasonableConcurrency caps auto-determined concurrency to avoid resource exhaustion
	MaxReasonableConcurrency = 32
)

// maxEventLineSize is the longest test2json line the engine will parse
var maxEventLineSize = 16 * 1024 * 1024

// test2json actions
const (
	ActionStart       = "start"
	ActionRun         = "run"
	ActionPause       = "pause"
	ActionCont        = "cont"
	ActionPass        = "pass"
	ActionFail        = "fail"
	ActionSkip        = "skip"
	ActionOutput      = "output"
	ActionBuildOutput = "build-output"
	ActionBuildFail   = "build-fail"
)

// Environment variables handed to test processes
const (
	EnvSuite       = "TESTBRIDGE_SUITE"
	EnvTest        = "TESTBRIDGE_TEST"
	EnvParamPrefix = "TESTBRIDGE_PARAM_"
)
