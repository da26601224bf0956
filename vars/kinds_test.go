// Copyright 2026 The ti-tools Authors
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

package vars_test

import (
	"testing"

	"github.com/adambyle/ti-tools/vars"
	"github.com/stretchr/testify/require"
)

func TestKindByName(t *testing.T) {
	require.Equal(t, vars.KindProgram, vars.KindByName("program"))
	require.Equal(t, vars.KindReal, vars.KindByName("real"))
	require.Equal(t, vars.KindAppVar, vars.KindByName("appvar"))
	require.Equal(t, vars.KindUnknown, vars.KindByName("bogus"))
	require.Equal(t, vars.KindUnknown, vars.KindByName(""))
}

func TestKindByExtension(t *testing.T) {
	require.Equal(t, vars.KindProgram, vars.KindByExtension("8xp"))
	require.Equal(t, vars.KindProgram, vars.KindByExtension(".8xp"))
	require.Equal(t, vars.KindProgram, vars.KindByExtension("8XP"))
	require.Equal(t, vars.KindGroup, vars.KindByExtension(".8xg"))
	require.Equal(t, vars.KindUnknown, vars.KindByExtension("txt"))
	require.Equal(t, vars.KindUnknown, vars.KindByExtension(""))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "program", vars.KindProgram.String())
	require.Equal(t, "unknown", vars.KindUnknown.String())
}
