// Package errors provides centralized error code definitions for GLYPHC.
// All error codes follow a consistent taxonomy for AI-friendly error reporting.
package errors

// Error code constants organized by phase.
// Each constant represents a specific error condition with structured reporting.
const (
	// ============================================================================
	// Parser Errors (PAR###)
	// ============================================================================

	// PAR001 indicates an unexpected token was encountered during parsing
	PAR001 = "PAR001"

	// PAR002 indicates a missing closing delimiter (paren, bracket, brace)
	PAR002 = "PAR002"

	// PAR003 indicates invalid function declaration syntax
	PAR003 = "PAR003"

	// PAR004 indicates invalid module declaration syntax
	PAR004 = "PAR004"

	// PAR005 indicates invalid import statement syntax
	PAR005 = "PAR005"

	// PAR006 indicates invalid test block syntax
	PAR006 = "PAR006"

	// PAR007 indicates invalid property block syntax
	PAR007 = "PAR007"

	// PAR008 indicates invalid pattern match syntax
	PAR008 = "PAR008"

	// PAR009 indicates invalid type annotation syntax
	PAR009 = "PAR009"

	// PAR010 indicates invalid effect annotation syntax
	PAR010 = "PAR010"

	// ============================================================================
	// Module System Errors (MOD###)
	// ============================================================================

	// MOD001 indicates module name doesn't match file path
	MOD001 = "MOD001"

	// MOD002 indicates multiple module declarations in single file
	MOD002 = "MOD002"

	// MOD003 indicates unsupported re-export attempt
	MOD003 = "MOD003"

	// MOD004 indicates duplicate export in module
	MOD004 = "MOD004"

	// MOD005 indicates invalid module path format
	MOD005 = "MOD005"

	// ============================================================================
	// Loader Errors (LDR###)
	// ============================================================================

	// LDR001 indicates module file not found
	LDR001 = "LDR001"

	// LDR002 indicates circular module dependency detected
	LDR002 = "LDR002"

	// LDR003 indicates duplicate module definition
	LDR003 = "LDR003"

	// LDR004 indicates import of non-existent export
	LDR004 = "LDR004"

	// LDR005 indicates ambiguous import (multiple modules export same name)
	LDR005 = "LDR005"

	// ============================================================================
	// Desugaring Errors (DSG###)
	// ============================================================================

	// DSG001 indicates invalid desugaring transformation
	DSG001 = "DSG001"

	// DSG002 indicates alpha-renaming conflict
	DSG002 = "DSG002"

	// DSG003 indicates recursive function without proper binding
	DSG003 = "DSG003"

	// ============================================================================
	// Type Checking Errors (TC###) - Already defined in json_encoder.go
	// ============================================================================
	// TC001-TC007 defined in json_encoder.go

	// TC008 indicates recursive type without base case
	TC008 = "TC008"

	// TC009 indicates effect constraint violation
	TC009 = "TC009"

	// TC010 indicates missing type class instance
	TC010 = "TC010"

	// TC011 indicates indexing a value whose inferred kind is not a container
	TC011 = "TC011"

	// TC012 indicates an arithmetic operator applied to a string operand
	TC012 = "TC012"

	// ============================================================================
	// Elaboration Errors (ELB###) - Already defined in json_encoder.go
	// ============================================================================
	// ELB001-ELB004 defined in json_encoder.go

	// ELB005 indicates invalid Core AST structure after elaboration
	ELB005 = "ELB005"

	// ELB006 indicates failed ANF normalization
	ELB006 = "ELB006"

	// ============================================================================
	// Linking Errors (LNK###) - Already defined in json_encoder.go
	// ============================================================================
	// LNK001-LNK004 defined in json_encoder.go

	// LNK005 indicates version mismatch in linked modules
	LNK005 = "LNK005"

	// ============================================================================
	// Evaluation Errors (EVA###)
	// ============================================================================

	// EVA001 indicates unbound variable at runtime
	EVA001 = "EVA001"

	// EVA002 indicates pattern match failure at runtime
	EVA002 = "EVA002"

	// EVA003 indicates type assertion failed
	EVA003 = "EVA003"

	// EVA004 indicates effect capability not provided
	EVA004 = "EVA004"

	// EVA005 indicates infinite recursion detected
	EVA005 = "EVA005"

	// ============================================================================
	// Runtime Errors (RT###) - Already defined in json_encoder.go
	// ============================================================================
	// RT001-RT006 defined in json_encoder.go

	// RT007 indicates out of memory
	RT007 = "RT007"

	// RT008 indicates timeout exceeded
	RT008 = "RT008"

	// RT009 indicates a dynamic-dispatch call site resolved to a callee outside the runtime allowlist
	RT009 = "RT009"

	// RT010 indicates safe_attr denied access to a non-public attribute
	RT010 = "RT010"

	// RT011 indicates a callback wrapper ran after its owning session closed
	RT011 = "RT011"

	// ============================================================================
	// AST Validator Errors (VAL###)
	// ============================================================================

	// VAL001 indicates a structurally inconsistent node (wrong child kind)
	VAL001 = "VAL001"

	// VAL002 indicates a required child is missing
	VAL002 = "VAL002"

	// VAL003 indicates a statement appears where only an expression is allowed (or vice versa)
	VAL003 = "VAL003"

	// VAL004 indicates colliding function parameter names
	VAL004 = "VAL004"

	// VAL005 indicates a nonlocal reference to a name not in any enclosing function scope
	VAL005 = "VAL005"

	// VAL006 indicates break/continue outside a loop
	VAL006 = "VAL006"

	// VAL007 indicates return outside a function
	VAL007 = "VAL007"

	// ============================================================================
	// Security Analyzer Errors (SEC###)
	// ============================================================================

	// SEC001 indicates a denylisted identifier reference
	SEC001 = "SEC001"

	// SEC002 indicates a suspicious literal flowing into a sensitive sink
	SEC002 = "SEC002"

	// SEC003 indicates an import of a module outside the unified registry
	SEC003 = "SEC003"

	// ============================================================================
	// Module Registry Errors (REG###)
	// ============================================================================

	// REG001 indicates a module name collision in the registry
	REG001 = "REG001"

	// REG002 indicates a module could not be found by any resolution step
	REG002 = "REG002"

	// REG003 indicates a circular dependency between modules
	REG003 = "REG003"

	// REG004 indicates a malformed module (parse/metadata failure)
	REG004 = "REG004"

	// REG005 indicates an ambiguous module (multiple candidates, same path)
	REG005 = "REG005"

	// REG006 indicates a hot-reload failed and the previous artifact was retained
	REG006 = "REG006"

	// ============================================================================
	// Allowed-Functions Registry / Whitelist Errors (WL###)
	// ============================================================================

	// WL001 indicates a name requested from a registry that was already dropped
	WL001 = "WL001"

	// ============================================================================
	// Code Emitter Errors (GEN###)
	// ============================================================================

	// GEN001 indicates a call to a name that is neither user-defined, builtin, nor imported
	GEN001 = "GEN001"

	// GEN002 indicates a call to a function not exported by an imported module
	GEN002 = "GEN002"

	// GEN003 indicates an import whose target is not present in the module registry
	GEN003 = "GEN003"

	// GEN004 indicates an internal code generator invariant violation (bug, not user-facing)
	GEN004 = "GEN004"

	// ============================================================================
	// Capability Manager Errors (CAP###)
	// ============================================================================

	// CAP001 indicates a required capability is absent from the current context
	CAP001 = "CAP001"

	// CAP002 indicates a token's max_usage would be exceeded
	CAP002 = "CAP002"

	// CAP003 indicates a token's expires_at has passed
	CAP003 = "CAP003"

	// CAP004 indicates a runtime attribute-access guard rejected access
	CAP004 = "CAP004"

	// CAP005 indicates a runtime call guard rejected a dynamic call
	CAP005 = "CAP005"

	// ============================================================================
	// Async Executor / Callback Bridge Errors (ASY###)
	// ============================================================================

	// ASY001 indicates an async task exceeded its timeout
	ASY001 = "ASY001"

	// ASY002 indicates a callback fired after its owning session closed
	ASY002 = "ASY002"

	// ASY003 indicates a callback's late-bound function name is no longer defined in the session
	ASY003 = "ASY003"

	// ============================================================================
	// Project Configuration Errors (CFG###)
	// ============================================================================

	// CFG001 indicates the project configuration document failed schema validation
	CFG001 = "CFG001"

	// CFG002 indicates the project configuration document could not be parsed (malformed JSON/YAML/TOML, or an unrecognized extension)
	CFG002 = "CFG002"
)

// ErrorInfo provides structured information about an error code
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry maps error codes to their information
var ErrorRegistry = map[string]ErrorInfo{
	// Parser errors
	PAR001: {PAR001, "parser", "syntax", "Unexpected token"},
	PAR002: {PAR002, "parser", "syntax", "Missing closing delimiter"},
	PAR003: {PAR003, "parser", "syntax", "Invalid function declaration"},
	PAR004: {PAR004, "parser", "syntax", "Invalid module declaration"},
	PAR005: {PAR005, "parser", "syntax", "Invalid import statement"},
	PAR006: {PAR006, "parser", "syntax", "Invalid test block"},
	PAR007: {PAR007, "parser", "syntax", "Invalid property block"},
	PAR008: {PAR008, "parser", "syntax", "Invalid pattern match"},
	PAR009: {PAR009, "parser", "syntax", "Invalid type annotation"},
	PAR010: {PAR010, "parser", "syntax", "Invalid effect annotation"},

	// Module errors
	MOD001: {MOD001, "module", "structure", "Module name/path mismatch"},
	MOD002: {MOD002, "module", "structure", "Multiple modules per file"},
	MOD003: {MOD003, "module", "feature", "Re-export not supported"},
	MOD004: {MOD004, "module", "namespace", "Duplicate export"},
	MOD005: {MOD005, "module", "syntax", "Invalid module path"},

	// Loader errors
	LDR001: {LDR001, "loader", "resolution", "Module not found"},
	LDR002: {LDR002, "loader", "dependency", "Circular dependency"},
	LDR003: {LDR003, "loader", "namespace", "Duplicate module"},
	LDR004: {LDR004, "loader", "resolution", "Import not exported"},
	LDR005: {LDR005, "loader", "resolution", "Ambiguous import"},

	// Desugar errors
	DSG001: {DSG001, "desugar", "transform", "Invalid desugaring"},
	DSG002: {DSG002, "desugar", "scope", "Alpha-renaming conflict"},
	DSG003: {DSG003, "desugar", "recursion", "Invalid recursive binding"},

	// Type checking errors
	TC001: {TC001, "typecheck", "type", "Type mismatch"},
	TC002: {TC002, "typecheck", "scope", "Unbound variable"},
	TC003: {TC003, "typecheck", "constraint", "Constraint solving failed"},
	TC004: {TC004, "typecheck", "unification", "Occurs check failed"},
	TC005: {TC005, "typecheck", "kind", "Kind mismatch"},
	TC006: {TC006, "typecheck", "annotation", "Missing type annotation"},
	TC007: {TC007, "typecheck", "defaulting", "Defaulting ambiguity"},
	TC008: {TC008, "typecheck", "recursion", "Non-terminating type"},
	TC009: {TC009, "typecheck", "effect", "Effect constraint violated"},
	TC010: {TC010, "typecheck", "instance", "Missing type class instance"},
	TC011: {TC011, "typecheck", "container", "Indexing a non-container value"},
	TC012: {TC012, "typecheck", "arithmetic", "Arithmetic operator applied to a string"},

	// Elaboration errors
	ELB001: {ELB001, "elaborate", "structure", "Invalid AST structure"},
	ELB002: {ELB002, "elaborate", "dictionary", "Dictionary resolution failed"},
	ELB003: {ELB003, "elaborate", "transform", "ANF transformation error"},
	ELB004: {ELB004, "elaborate", "pattern", "Non-exhaustive pattern"},
	ELB005: {ELB005, "elaborate", "validation", "Invalid Core AST"},
	ELB006: {ELB006, "elaborate", "normalize", "ANF normalization failed"},

	// Linking errors
	LNK001: {LNK001, "link", "instance", "Missing dictionary instance"},
	LNK002: {LNK002, "link", "instance", "Ambiguous instance"},
	LNK003: {LNK003, "link", "module", "Module not found"},
	LNK004: {LNK004, "link", "dependency", "Circular dependency"},
	LNK005: {LNK005, "link", "version", "Version mismatch"},

	// Evaluation errors
	EVA001: {EVA001, "eval", "scope", "Unbound variable"},
	EVA002: {EVA002, "eval", "pattern", "Pattern match failure"},
	EVA003: {EVA003, "eval", "type", "Type assertion failed"},
	EVA004: {EVA004, "eval", "effect", "Missing capability"},
	EVA005: {EVA005, "eval", "recursion", "Infinite recursion"},

	// Runtime errors
	RT001: {RT001, "runtime", "arithmetic", "Division by zero"},
	RT002: {RT002, "runtime", "pattern", "Pattern match failure"},
	RT003: {RT003, "runtime", "bounds", "Index out of bounds"},
	RT004: {RT004, "runtime", "null", "Null pointer"},
	RT005: {RT005, "runtime", "stack", "Stack overflow"},
	RT006: {RT006, "runtime", "type", "Type assertion failed"},
	RT007: {RT007, "runtime", "memory", "Out of memory"},
	RT008: {RT008, "runtime", "timeout", "Timeout exceeded"},
	RT009: {RT009, "runtime", "dispatch", "Forbidden dynamic call"},
	RT010: {RT010, "runtime", "attribute", "Forbidden attribute access"},
	RT011: {RT011, "runtime", "session", "Session closed before callback invocation"},

	// AST validator errors
	VAL001: {VAL001, "validate", "structure", "Inconsistent node"},
	VAL002: {VAL002, "validate", "structure", "Missing required child"},
	VAL003: {VAL003, "validate", "structure", "Statement/expression position mismatch"},
	VAL004: {VAL004, "validate", "scope", "Colliding function parameters"},
	VAL005: {VAL005, "validate", "scope", "Unbound nonlocal reference"},
	VAL006: {VAL006, "validate", "scope", "break/continue outside loop"},
	VAL007: {VAL007, "validate", "scope", "return outside function"},

	// Security analyzer errors
	SEC001: {SEC001, "security", "pattern", "Denylisted identifier"},
	SEC002: {SEC002, "security", "pattern", "Suspicious literal in sensitive sink"},
	SEC003: {SEC003, "security", "import", "Import outside unified registry"},

	// Module registry errors
	REG001: {REG001, "registry", "namespace", "Module name collision"},
	REG002: {REG002, "registry", "resolution", "Module not found"},
	REG003: {REG003, "registry", "dependency", "Circular dependency"},
	REG004: {REG004, "registry", "structure", "Malformed module"},
	REG005: {REG005, "registry", "resolution", "Ambiguous module"},
	REG006: {REG006, "registry", "reload", "Hot reload failed, previous artifact retained"},

	// Allowed-functions registry errors
	WL001: {WL001, "whitelist", "lifecycle", "Registry already dropped"},

	// Code emitter errors
	GEN001: {GEN001, "codegen", "whitelist", "Unknown function"},
	GEN002: {GEN002, "codegen", "whitelist", "Unknown module function"},
	GEN003: {GEN003, "codegen", "resolution", "Unknown module"},
	GEN004: {GEN004, "codegen", "internal", "Code generator invariant violation"},

	// Capability manager errors
	CAP001: {CAP001, "capability", "grant", "Missing capability"},
	CAP002: {CAP002, "capability", "usage", "Usage limit exhausted"},
	CAP003: {CAP003, "capability", "usage", "Token expired"},
	CAP004: {CAP004, "capability", "attribute", "Forbidden attribute access"},
	CAP005: {CAP005, "capability", "call", "Forbidden dynamic call"},

	// Async executor errors
	ASY001: {ASY001, "async", "timeout", "Task timed out"},
	ASY002: {ASY002, "async", "session", "Session closed"},
	ASY003: {ASY003, "async", "binding", "Callback target not found"},

	// Project configuration errors
	CFG001: {CFG001, "config", "schema", "Schema validation failed"},
	CFG002: {CFG002, "config", "parse", "Configuration document could not be parsed"},
}

// GetErrorInfo returns information about an error code
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, exists := ErrorRegistry[code]
	return info, exists
}

// IsParserError checks if the error code is a parser error
func IsParserError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "parser"
}

// IsModuleError checks if the error code is a module error
func IsModuleError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "module"
}

// IsLoaderError checks if the error code is a loader error
func IsLoaderError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "loader"
}

// IsTypeError checks if the error code is a type checking error
func IsTypeError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "typecheck"
}

// IsRuntimeError checks if the error code is a runtime error
func IsRuntimeError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && (info.Phase == "runtime" || info.Phase == "eval")
}

// IsValidationError checks if the error code is an AST validator error
func IsValidationError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "validate"
}

// IsSecurityError checks if the error code is a security analyzer error
func IsSecurityError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "security"
}

// IsRegistryError checks if the error code is a module registry error
func IsRegistryError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "registry"
}

// IsCodegenError checks if the error code is a code emitter error
func IsCodegenError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "codegen"
}

// IsCapabilityError checks if the error code is a capability manager error
func IsCapabilityError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "capability"
}

// IsAsyncError checks if the error code is an async executor error
func IsAsyncError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "async"
}

// IsConfigError checks if the error code is a project-configuration error
func IsConfigError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "config"
}
