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

package mic_test

import (
	"fmt"

	"github.com/Bricktech2000/Atto-8-sub000/isa"
	"github.com/Bricktech2000/Atto-8-sub000/mic"
)

func ExampleCompile() {
	rom, err := mic.Compile()
	if err != nil {
		fmt.Println(err)
		return
	}
	inc := isa.MicroIndex(isa.Encode(isa.Plain(isa.OpInc)))
	for step := 0; step < 6; step++ {
		fmt.Println(step, mic.Unpack(rom[mic.Addr(false, inc, step)]))
	}

	// Output:
	// 0 SP_DATA|DATA_AL
	// 1 DATA_XL|MEM_DATA
	// 2 CIN|SUM_DATA|DATA_MEM
	// 3 IP_DATA|DATA_AL
	// 4 MEM_DATA|DATA_IL
	// 5 MicrocodeFault
}
