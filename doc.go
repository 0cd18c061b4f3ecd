// Package xgbsys builds the vendored XGBoost library from source and exposes it to Go.
//
// The package is the Go equivalent of a "-sys" build script: it stages the XGBoost
// source tree, drives CMake with the options the target platform and enabled
// features require, generates cgo bindings over the public C header and emits the
// linker directives a consumer needs to link the static archives.
//
// # Pipeline
//
// A build runs these steps in order and stops at the first failure:
//
//	Stager        copy ./xgboost into <out>/xgboost (skipped when present)
//	Resolve       platform decision table (OS, CUDA, Homebrew probe)
//	CmakeBuilder  cmake configure -> cmake --build -> cmake --install
//	Discover      locate lib, lib64, rabit/lib, dmlc-core and the .a files
//	Generator     header -> <out>/bindings.go
//	LinkPlan      directives on stdout and <out>/link_flags.go
//
// # Basic Usage
//
//	env, err := xgbsys.LoadEnv(os.LookupEnv)
//	if err != nil {
//	    return err
//	}
//
//	result, err := xgbsys.NewPipeline(env).Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.BindingsPath)
//
// # Link Order
//
// Every LinkPlan emits dmlc before xgboost, and LinkPlan.Validate rejects plans
// that do not. The directive stream keeps that emission order.
//
// The cgo flags written by LinkPlan.WriteLinkFlags are regrouped for the
// native linker: search paths first, then the internal archives, then the C++,
// OpenMP and other runtime libraries the archives reference. On ELF targets the
// archives are wrapped in -Wl,--start-group and -Wl,--end-group so symbols
// referenced in either direction between xgboost and dmlc resolve.
//
// # Platform Support
//
// Linux (GNU OpenMP, libstdc++) and macOS (LLVM OpenMP from Homebrew, libc++).
// CUDA acceleration is enabled with the "cuda" feature.
package xgbsys
