package config

import "regexp"

// Setting names of the install configuration.
const (
	KeyServerPort              = "serverPort"
	KeyServerName              = "serverName"
	KeyDBHost                  = "dbHost"
	KeyDBName                  = "dbName"
	KeyDBPort                  = "dbPort"
	KeyDBUser                  = "dbUser"
	KeyDBPass                  = "dbPass"
	KeyDataRoot                = "dataRoot"
	KeySessionSecret           = "sessionSecret"
	KeyUseFFmpeg               = "useffmpeg"
	KeySMTPService             = "smtpService"
	KeySMTPUsername            = "smtpUsername"
	KeySMTPPassword            = "smtpPassword"
	KeyFromAddress             = "fromAddress"
	KeyRootURL                 = "rootUrl"
	KeyAuthoringToolRepository = "authoringToolRepository"
	KeyFrameworkRepository     = "frameworkRepository"
	KeyFrameworkRevision       = "frameworkRevision"

	// Written back after the master tenant exists.
	KeyMasterTenantName = "masterTenantName"
	KeyMasterTenantID   = "masterTenantID"
)

// Setting names of the master tenant details.
const (
	KeyTenantName        = "name"
	KeyTenantDisplayName = "displayName"
)

// Setting names of the super user credentials.
const (
	KeyEmail          = "email"
	KeyPassword       = "password"
	KeyRetypePassword = "retypePassword"
)

// Defaults that other packages need outside of a schema.
const (
	DefaultFrameworkRepository = "https://github.com/adaptlearning/adapt_framework.git"
	DefaultTenantName          = "master"
	NoSMTPService              = "none"
)

var (
	portPattern       = regexp.MustCompile(`^[0-9]+\W*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\W*$`)
	nonEmptyPattern   = regexp.MustCompile(`^.+$`)
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
)

// DefaultSchema returns the install configuration schema. latestFrameworkTag
// feeds the default framework revision and comes from a lookup made before
// the schema is presented.
func DefaultSchema(latestFrameworkTag string) Schema {
	revision := ""
	if latestFrameworkTag != "" {
		revision = "tags/" + latestFrameworkTag
	}

	return Schema{
		{Name: KeyServerPort, Description: "Server port", Kind: KindInteger, Pattern: portPattern, Default: 5000, Required: true},
		{Name: KeyServerName, Description: "Server name", Default: "localhost", Required: true},
		{Name: KeyDBHost, Description: "Database host", Default: "localhost", Required: true},
		{Name: KeyDBName, Description: "Master database name", Pattern: identifierPattern, Default: "adapt-tenant-master", Required: true},
		{Name: KeyDBPort, Description: "Database server port", Kind: KindInteger, Pattern: portPattern, Default: 27017, Required: true},
		{Name: KeyDBUser, Description: "Database user", Default: ""},
		{Name: KeyDBPass, Description: "Database password", Default: "", Sensitive: true},
		{Name: KeyDataRoot, Description: "Data directory path", Pattern: identifierPattern, Default: "data", Required: true},
		{Name: KeySessionSecret, Description: "Session secret", Pattern: nonEmptyPattern, Default: "your-session-secret", Required: true, Sensitive: true},
		{Name: KeyUseFFmpeg, Description: "Will ffmpeg be used? y/N", Kind: KindBoolean, Default: "N"},
		{Name: KeySMTPService, Description: "Which SMTP service (if any) will be used?", Default: NoSMTPService},
		{Name: KeySMTPUsername, Description: "SMTP username", Default: ""},
		{Name: KeySMTPPassword, Description: "SMTP password", Default: "", Sensitive: true},
		{Name: KeyFromAddress, Description: "Sender email address", Default: ""},
		{Name: KeyRootURL, Description: "The url this instance is accessed by", Default: "http://localhost:5000/", Required: true},
		{Name: KeyAuthoringToolRepository, Description: "Authoring Tool Repository", Default: "https://github.com/adaptlearning/adapt_authoring.git", Required: true},
		{Name: KeyFrameworkRepository, Description: "Framework Repository", Default: DefaultFrameworkRepository, Required: true},
		{Name: KeyFrameworkRevision, Description: "Framework revision to install (branchName || tags/tagName)", Default: revision, Required: true},
	}
}

// TenantSchema returns the master tenant details schema.
func TenantSchema() Schema {
	return Schema{
		{Name: KeyTenantName, Description: "Set a unique name for your tenant", Pattern: identifierPattern, Default: DefaultTenantName, Required: true},
		{Name: KeyTenantDisplayName, Description: "Set the display name for your tenant", Default: "Master", Required: true},
	}
}

// SuperUserSchema returns the super user credentials schema. Its values are
// never persisted.
func SuperUserSchema() Schema {
	return Schema{
		{Name: KeyEmail, Description: "Email address", Pattern: emailPattern, Required: true},
		{Name: KeyPassword, Description: "Password", Required: true, Sensitive: true},
		{Name: KeyRetypePassword, Description: "Retype Password", Required: true, Sensitive: true, MustMatch: KeyPassword},
	}
}

// OverrideNames returns every setting name that may be supplied as an override.
func OverrideNames() []string {
	return DefaultSchema("").Merge(TenantSchema()).Merge(SuperUserSchema()).Names()
}
