package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"mean", []string{"compute", "mean", "1,-1,4,2"}, `{"operation":"mean","result":1.5}`, false},
		{"median", []string{"compute", "median", "1,-1,4"}, `{"operation":"median","result":1}`, false},
		{"mode", []string{"compute", "mode", "1,1,1,2,2,3"}, `{"operation":"mode","result":1}`, false},
		{"mean of large values", []string{"compute", "mean", "1e308,1e308"}, `{"operation":"mean","result":1e+308}`, false},
		{"missing nums", []string{"compute", "mean"}, `{"error":{"message":"Query string must be comma separated list of nums","status":400}}`, true},
		{"malformed", []string{"compute", "mode", "1,2,x"}, `{"error":{"message":"The value 'x' at index 2 is not a valid number.","status":400}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errFailedEnvelope) {
				t.Errorf("error = %v, want errFailedEnvelope", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCompute_UnknownOperation(t *testing.T) {
	_, err := runRoot(t, "compute", "variance", "1,2")
	if err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Errorf("error = %v, want unknown operation", err)
	}
}
