// This file is part of Atto-8 - https://github.com/Bricktech2000/Atto-8
//
// Copyright 2023 The Atto-8 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The asm command assembles an Atto-8 source file into a 0x100 byte memory
// image.
//
// Usage:
//
//	asm [flags] <source> <image-out>
//
//	--debug
//		  enable debug diagnostics
//	--entry name
//		  name of the entry point macro (default "main")
//	--listing
//		  write a disassembly listing to <image-out>.lst
//
// Lines of the form "@ path" include another source file, relative to the
// including file. Every error found while assembling is reported, one
// "Error: <file>:<token>: <message>" line each, and the command exits with a
// non-zero status without writing the image. On success it prints "Done".
//
// --debug lowers the log level to debug, which traces optimizer passes and
// layout restarts, and prints full stack traces for I/O errors.
package main
