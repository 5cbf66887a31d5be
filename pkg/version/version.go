package version

import "fmt"

// PlannerVersion indicates what version of the planner the binary belongs to
var PlannerVersion string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// String returns a pretty string concatenation of PlannerVersion and GitCommit
func String() string {
	return fmt.Sprintf("smtplan version: %s\n     Git commit: %s\n", PlannerVersion, GitCommit)
}
