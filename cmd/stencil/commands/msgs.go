package commands

// Message constants
const (
	MsgRootShort = "Customize a cloned project template"
	MsgRootLong  = `stencil reads a template's template.config.json, takes your layer
selections, and trims the cloned project down to exactly what you
chose: unselected files are removed, manifest entries dropped, guarded
code stripped, and package.json dependencies resolved.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview changes without executing them"
	MsgFlagForce   = "Also execute conflicting removals"

	MsgApplyShort = "Apply your selections to the project"
	MsgApplyLong  = `Apply builds the customization plan for the project directory and
executes it: removals first, then file rewrites. Mutated files are
backed up to the journal before they are touched.`
	MsgApplyExample = `  stencil apply                                  # defaults, current directory
  stencil apply --select pages=popup,options     # explicit selections
  stencil apply --selections-file choices.json ./my-app
  stencil apply --dry-run -v`

	MsgPlanShort = "Show what apply would do without doing it"
	MsgPlanLong  = `Plan builds the same customization plan as apply and prints it
without mutating anything.`

	MsgInspectShort = "Show the template's layers and items"
	MsgInspectLong  = `Inspect reads template.config.json and lists every layer and item,
marking the ones enabled by default. Use --format json or yaml for
machine-readable output.`

	MsgGenConfigShort   = "Generate a default .stencil.toml"
	MsgGenConfigLong    = "Output the default settings to stdout or write them to the project directory."
	MsgGenConfigExample = `  stencil gen-config           # Output to stdout
  stencil gen-config -w        # Write to ./.stencil.toml
  stencil gen-config -w ./app  # Write to ./app/.stencil.toml`

	MsgTopicsShort = "List all topics or show help for a topic"
	MsgTopicsLong  = "Display a list of all available help topics that provide additional documentation beyond command help."

	MsgVersionShort = "Print version information"

	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = `To load completions:

Bash:
  $ source <(stencil completion bash)

Zsh:
  $ stencil completion zsh > "${fpath[1]}/_stencil"

Fish:
  $ stencil completion fish | source

PowerShell:
  PS> stencil completion powershell | Out-String | Invoke-Expression
`
)
