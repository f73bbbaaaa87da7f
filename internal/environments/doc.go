// Package environments resolves the execution environment a model asks for.
//
// Environments are declared in the project's fal_project.yml:
//
//	environments:
//	  - name: ml
//	    type: venv
//	    requirements: [scikit-learn]
//
// The name "local" is reserved: it always resolves to the caller's own process
// and never reads the manifest. Every other name must be declared exactly once.
//
// Only the local host exists. Definitions of other kinds can be declared and
// resolved, but running a model on them is rejected by the runner.
package environments
