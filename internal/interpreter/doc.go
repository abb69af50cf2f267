// Package interpreter turns free-form chat lines into structured commands.
//
// A line such as "scale myapp to 3" becomes
// Command{Action: ActionScale, Target: "myapp", Value: 3}. Targets are
// resolved against a Catalog of deployment templates, which is built once
// at startup (from DefaultTemplates or a YAML file) and never modified.
//
// Interpretation is deterministic. Unknown intents yield ActionNone and an
// unknown template yields an empty Target; neither is an error. Callers
// decide how to reject incomplete commands.
package interpreter
