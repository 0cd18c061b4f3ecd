//go:build mage

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	xgbsys "github.com/contriboss/xgboost-sys-go"
)

var Default = Build

func logger() *slog.Logger {
	level := slog.LevelInfo
	if mg.Verbose() {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.Kitchen}))
}

func loadEnv() (*xgbsys.Env, error) {
	return xgbsys.LoadEnv(os.LookupEnv)
}

// Plan prints the cmake options and link directives for the current environment.
func Plan() error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	plan, err := xgbsys.NewPipeline(env).WithLogger(logger()).Plan()
	if err != nil {
		return err
	}
	for _, o := range plan.Options {
		fmt.Println(o.Arg())
	}
	for _, line := range plan.LinkPlan.Lines() {
		fmt.Println(line)
	}
	return nil
}

// Build stages, builds and binds XGBoost into $XGBSYS_OUT_DIR.
func Build(ctx context.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	_, err = xgbsys.NewPipeline(env).WithLogger(logger()).Run(ctx)
	return err
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes the output directory.
func Clean() error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	return sh.Rm(env.OutDir)
}

// Rebuild cleans, then builds.
func Rebuild(ctx context.Context) error {
	mg.SerialCtxDeps(ctx, Clean, Build)
	return nil
}
