//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for showstore using Mage.
//
// Usage:
//
//	mage build        Compile the showstore binary to bin/
//	mage test:all     Run every test
//	mage test:unit    Run the fast package tests (-short)
//	mage test:race    Run every test with the race detector
//	mage test:cover   Write coverage.out and print the total
//	mage lint         Run golangci-lint
//	mage vet          Run go vet
//	mage clean        Remove build artifacts
//	mage install      Install showstore to GOPATH/bin
package main

const (
	binGo      = "go"
	binaryName = "showstore"
	binaryDir  = "bin"
	cmdDir     = "./cmd/showstore"
	modulePath = "github.com/mesh-intelligence/showstore"
)
