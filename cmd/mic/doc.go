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

// The mic command compiles the Atto-8 microcode and writes it as an image of
// little endian 16 bit control words, 0x2000 words in all.
//
// Usage:
//
//	mic [flags] <image-out>
//
//	--debug
//		  enable debug diagnostics
//	--listing
//		  write a microcode listing to <image-out>.lst
//
// The compiler takes no input. Sequences that overflow the step budget or
// break a bus convention are reported one "Error: <index>: <message>" line
// each, and the command exits with a non-zero status.
package main
