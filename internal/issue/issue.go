// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PythonNotFoundId Id = iota + 1
	VenvCreateFailedId
	RequirementsNotFoundId
	InstallerUpgradeFailedId
	DependencyInstallFailedId
	KernelRegisterFailedId
	ConfigLoadFailedId
	ProjectFileParseErrorId
	HookSyntaxErrorId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links shown under "See also"
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	pythonNotFoundIssue = &Issue{
		id: PythonNotFoundId,
		mdMsg: `
# No Python interpreter found!

Neither the preferred interpreter nor the generic fallback resolved to an
executable on your PATH.

## Things you can try:
- Install Python 3:
  - Linux: ` + "`sudo apt install python3`" + ` or ` + "`sudo dnf install python3`" + `
  - macOS: ` + "`brew install python`" + `
  - Windows: https://www.python.org/downloads/

- Point nbstrap at a specific interpreter:
~~~
$ nbstrap up --python /usr/local/bin/python3.11
~~~

- Or set it in nbstrap.toml:
~~~toml
python = "python3.12"
~~~`,
		extLinks: []HttpLink{"https://www.python.org/downloads/"},
	}

	venvCreateFailedIssue = &Issue{
		id: VenvCreateFailedId,
		mdMsg: `
# Virtual environment creation failed!

The selected interpreter could not create the virtual environment.

## Common causes:
- The venv module is missing (Debian/Ubuntu ship it separately)
- The target directory is not writable
- The disk is full

## Things you can try:
- On Debian/Ubuntu, install the venv module:
~~~
$ sudo apt install python3-venv
~~~

- Check the target directory:
~~~
$ nbstrap up --venv-dir /path/you/own/.venv
~~~

- Run with verbose mode for the interpreter's own error output:
~~~
$ nbstrap --verbose up
~~~`,
	}

	requirementsNotFoundIssue = &Issue{
		id: RequirementsNotFoundId,
		mdMsg: `
# Requirements file not found!

The dependency declaration file could not be read.

## Things you can try:
- Create a requirements.txt next to your notebooks:
~~~
pandas
duckdb
~~~

- Or point nbstrap at an existing one:
~~~
$ nbstrap up --requirements path/to/requirements.txt
~~~

- Or declare it in nbstrap.toml:
~~~toml
requirements = "deps/requirements.txt"
~~~`,
	}

	installerUpgradeFailedIssue = &Issue{
		id: InstallerUpgradeFailedId,
		mdMsg: `
# Package installer upgrade failed!

Upgrading pip inside the virtual environment did not succeed.

## Common causes:
- No network access to the package index
- A proxy intercepting HTTPS traffic
- A broken virtual environment from an interrupted earlier run

## Things you can try:
- Check network/proxy settings (pip honors HTTPS_PROXY)
- Remove the virtual environment directory and run nbstrap again
- Run with verbose mode to see pip's own output:
~~~
$ nbstrap --verbose up
~~~`,
	}

	dependencyInstallFailedIssue = &Issue{
		id: DependencyInstallFailedId,
		mdMsg: `
# Dependency installation failed!

pip could not install the declared dependencies into the virtual environment.

## Common causes:
- A requirements line pins a version that does not exist
- A package needs build tools that are not installed
- No network access to the package index

## Things you can try:
- Read pip's error output above; it names the failing requirement
- Try installing the failing package by hand inside the environment
- Run with verbose mode for the full pip output:
~~~
$ nbstrap --verbose up
~~~`,
	}

	kernelRegisterFailedIssue = &Issue{
		id: KernelRegisterFailedId,
		mdMsg: `
# Kernel registration failed!

ipykernel could not register the environment as a Jupyter kernel.

## Common causes:
- ipykernel is not installed in the environment (the install step was skipped)
- The user-level Jupyter data directory is not writable

## Things you can try:
- Re-run the full pipeline so ipykernel is installed first:
~~~
$ nbstrap up
~~~

- Check registration state:
~~~
$ nbstrap doctor
~~~`,
		extLinks: []HttpLink{"https://ipython.readthedocs.io/en/stable/install/kernel_install.html"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration loading failed!

Your user-level config file exists but could not be loaded.

## Things you can try:
- Check the config file syntax (CUE format)
- See where nbstrap looks for it:
~~~
$ nbstrap config path
~~~

- Show the effective configuration:
~~~
$ nbstrap config show
~~~`,
	}

	projectFileParseErrorIssue = &Issue{
		id: ProjectFileParseErrorId,
		mdMsg: `
# Failed to parse nbstrap.toml!

The project file contains syntax errors or invalid values.

## Example of a valid project file:
~~~toml
python = "python3.11"
venv_dir = ".venv"
requirements = "requirements.txt"

[kernel]
name = "myproject"
display_name = "Python (myproject)"

[hooks]
post_up = "echo provisioned"
~~~

## Things you can try:
- Check the error message above for the specific line
- Regenerate a starter file:
~~~
$ nbstrap config init
~~~`,
	}

	hookSyntaxErrorIssue = &Issue{
		id: HookSyntaxErrorId,
		mdMsg: `
# Hook script has a syntax error!

The post_up hook in nbstrap.toml is not valid POSIX shell.

Hooks run inside nbstrap's built-in shell interpreter, so they must parse as
POSIX sh regardless of your login shell.

## Things you can try:
- Check the error message above for the line/column
- Avoid bashisms like ` + "`[[ ... ]]`" + ` in hooks
- Test the snippet with ` + "`sh -n`" + ``,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Trying to create the virtual environment in a protected directory
- The user-level kernel directory is owned by another user

## Things you can try:
- Check file/directory permissions
- Choose a venv directory you own:
~~~
$ nbstrap up --venv-dir ~/envs/myproject
~~~`,
	}

	issues = map[Id]*Issue{
		pythonNotFoundIssue.Id():          pythonNotFoundIssue,
		venvCreateFailedIssue.Id():        venvCreateFailedIssue,
		requirementsNotFoundIssue.Id():    requirementsNotFoundIssue,
		installerUpgradeFailedIssue.Id():  installerUpgradeFailedIssue,
		dependencyInstallFailedIssue.Id(): dependencyInstallFailedIssue,
		kernelRegisterFailedIssue.Id():    kernelRegisterFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		projectFileParseErrorIssue.Id():   projectFileParseErrorIssue,
		hookSyntaxErrorIssue.Id():         hookSyntaxErrorIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
