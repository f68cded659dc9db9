package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *Model {
	return &Model{
		Params:      []ParamDef{{Name: "GPU", Expr: "1,2"}},
		Command:     []string{"python", "train.py"},
		Metrics:     []string{"accuracy"},
		Output:      DefaultOutput,
		Concurrency: 1,
	}
}

func TestModel_Validate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(m *Model)
		wantErr string
	}{
		{name: "valid", mutate: func(*Model) {}},
		{name: "script instead of command", mutate: func(m *Model) { m.Command = nil; m.Script = "echo hi" }},
		{name: "preserve without metrics", mutate: func(m *Model) { m.Metrics = nil; m.Preserve = true }},
		{name: "no parameters", mutate: func(m *Model) { m.Params = nil }, wantErr: "no parameters"},
		{name: "zero concurrency", mutate: func(m *Model) { m.Concurrency = 0 }, wantErr: "concurrency"},
		{name: "nothing to record", mutate: func(m *Model) { m.Metrics = nil }, wantErr: "metrics or preserve"},
		{name: "blank script", mutate: func(m *Model) { m.Command = nil; m.Script = " \n" }, wantErr: "no command"},
		{name: "empty parameter name", mutate: func(m *Model) { m.Params = append(m.Params, ParamDef{Expr: "1"}) }, wantErr: "empty name"},
		{name: "bad stream", mutate: func(m *Model) { m.Stream = "stdin" }, wantErr: "invalid stream"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := validModel()
			tc.mutate(m)
			err := m.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestModel_Merge(t *testing.T) {
	t.Parallel()

	base := &Model{
		Params:      []ParamDef{{Name: "GPU", Expr: "1,2"}},
		Command:     []string{"./run.sh"},
		Metrics:     []string{"loss"},
		Output:      "file.csv",
		Concurrency: 4,
		EnvFile:     ".env",
	}
	base.Merge(&Model{
		Params:      []ParamDef{{Name: "BATCH", Expr: "32GPU"}},
		Metrics:     []string{"accuracy"},
		Concurrency: 8,
		Stream:      "stderr",
	})

	want := &Model{
		Params:      []ParamDef{{Name: "GPU", Expr: "1,2"}, {Name: "BATCH", Expr: "32GPU"}},
		Command:     []string{"./run.sh"},
		Metrics:     []string{"accuracy"},
		Stream:      "stderr",
		Output:      "file.csv",
		Concurrency: 8,
		EnvFile:     ".env",
	}
	if diff := cmp.Diff(want, base); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}

	base.Merge(nil)
	assert.Len(t, base.Params, 2)
}

func TestModel_ApplyDefaults(t *testing.T) {
	t.Parallel()

	m := &Model{}
	m.ApplyDefaults()
	assert.Equal(t, DefaultOutput, m.Output)
	assert.Equal(t, 1, m.Concurrency)
}
