// Package config loads injector configuration.
//
// Configuration lives in injector.yaml (injector.json and injector.toml are
// also accepted) at the project root. Modules are declared as flat
// inject.<name> keys mapping a module name to a directory or single file
// relative to the web directory:
//
//	web_dir: public
//	deploy_dir: public/deploy
//	url_prefix: /
//	injector:
//	  compile: false
//	  minify: true
//	  on_error: fail
//	inject:
//	  app: js/app
//	  styles: css
//
// Every key can be overridden from the environment with the INJECTOR_
// prefix, dots replaced by underscores (INJECTOR_INJECTOR_COMPILE=true).
//
// Module names keep their configured spelling and resolve case-insensitively;
// viper itself folds keys read from files and the environment to lower case.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Deploy dir:", cfg.DeployPath())
package config
