// Package build produces every configured artifact ahead of time.
//
// A production deploy runs the builder once so that page requests only ever
// reuse artifacts. The builder force-rebuilds each module for every asset
// type that has files and records the results in a manifest.
//
// # Usage
//
//	inj, err := app.New(cfg)
//	builder := build.New(cfg, inj, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("Built %d artifacts in %s\n", len(result.Artifacts), result.Duration)
//
// # Output Structure
//
//	public/deploy/
//	├── app.build.js       # Script artifact
//	├── site.build.css     # Style artifact
//	├── theme.build.css    # Compiled LESS artifact
//	└── manifest.json      # Build manifest
//
// # Manifest
//
// The manifest maps artifact file names to their module, type and digest:
//
//	{
//	  "artifacts": {
//	    "app.build.js": {
//	      "module": "app",
//	      "type": "script",
//	      "file": "deploy/app.build.js",
//	      "sha256": "a1b2...",
//	      "size": 5120
//	    }
//	  }
//	}
package build
