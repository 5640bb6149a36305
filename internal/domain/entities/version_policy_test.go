//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

func TestPythonPolicy(t *testing.T) {
	t.Parallel()
	policy := entities.PythonPolicy{}

	t.Run("should classify pre-releases and dev releases as unstable", func(t *testing.T) {
		t.Parallel()

		// given
		cases := map[string]bool{
			"1.0.0":     true,
			"1.0.post1": true,
			"1.0.0a1":   false,
			"2.0.0rc1":  false,
			"1.0.dev0":  false,
			"3.0b2":     false,
		}

		for version, stable := range cases {
			// when
			got := policy.IsStable(version)

			// then
			assert.Equal(t, stable, got, version)
		}
	})

	t.Run("should order versions by the PEP 440 rules", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, 1, policy.Compare("1.10.0", "1.9.0"))
		assert.Equal(t, 0, policy.Compare("1.0", "1.0.0"))
		assert.Equal(t, -1, policy.Compare("1.0a1", "1.0"))
		assert.Equal(t, -1, policy.Compare("1.0.dev0", "1.0a1"))
		assert.Equal(t, 1, policy.Compare("1.0.post1", "1.0"))
		assert.Equal(t, -1, policy.Compare("1.0rc1", "1.0.post1"))
		assert.Equal(t, 1, policy.Compare("1!0.1", "2.0"))
	})

	t.Run("should evaluate specifier sets", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.True(t, policy.Satisfies("1.4.5", ">=1.2,<2"))
		assert.False(t, policy.Satisfies("2.0.0", ">=1.2,<2"))
		assert.False(t, policy.Satisfies("2.0a1", "<2.0"))
		assert.True(t, policy.Satisfies("1.4.2", "~=1.4"))
		assert.False(t, policy.Satisfies("2.0", "~=1.4"))
		assert.True(t, policy.Satisfies("1.4.9", "==1.4.*"))
		assert.False(t, policy.Satisfies("1.5.0", "!=1.5.0"))
		assert.False(t, policy.Satisfies("not-a-version", ">=1.0"))
		assert.True(t, policy.Satisfies("2.0rc2", ">=2.0rc1,<3"))
		assert.False(t, policy.Satisfies("1.0", ">=1.0,<=2.0.*"))
	})

	t.Run("should fall back to label heuristics for unparsable versions", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.False(t, policy.IsStable("nightly-beta"))
		assert.True(t, policy.IsStable("latest-build"))
		assert.Equal(t, -1, policy.Compare("abc", "abd"))
	})
}

func TestSemverPolicy(t *testing.T) {
	t.Parallel()
	policy := entities.SemverPolicy{}

	t.Run("should ignore operator prefixes when comparing", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, 1, policy.Compare("^1.10.0", "1.9.0"))
		assert.Equal(t, 0, policy.Compare("~2.0.0", "2.0.0"))
	})

	t.Run("should treat prerelease tags as unstable", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.False(t, policy.IsStable("1.0.0-beta.1"))
		assert.True(t, policy.IsStable("^1.2.3"))
	})

	t.Run("should check caret constraints", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.True(t, policy.Satisfies("1.5.0", "^1.2"))
		assert.False(t, policy.Satisfies("2.0.0", "^1.2"))
		assert.False(t, policy.Satisfies("1.0.0", "not a constraint"))
	})
}

func TestGoPolicy(t *testing.T) {
	t.Parallel()
	policy := entities.GoPolicy{}

	t.Run("should handle the v prefix and +incompatible suffix", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.True(t, policy.IsStable("v1.2.3"))
		assert.True(t, policy.IsStable("v2.0.0+incompatible"))
		assert.False(t, policy.IsStable("v1.2.3-rc.1"))
		assert.Equal(t, 1, policy.Compare("v1.10.0", "v1.9.0"))
		assert.Equal(t, 0, policy.Compare("v2.0.0+incompatible", "v2.0.0"))
		assert.True(t, policy.Satisfies("v1.5.0", ">=1.2.0, <2.0.0"))
		assert.Equal(t, "2.0.0", entities.StripGoVersion("v2.0.0+incompatible"))
	})
}

func TestPolicyFor(t *testing.T) {
	t.Parallel()

	t.Run("should select the policy of each ecosystem", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.IsType(t, entities.PythonPolicy{}, entities.PolicyFor(entities.LangPython))
		assert.IsType(t, entities.SemverPolicy{}, entities.PolicyFor(entities.LangNode))
		assert.IsType(t, entities.SemverPolicy{}, entities.PolicyFor(entities.LangRust))
		assert.IsType(t, entities.GoPolicy{}, entities.PolicyFor(entities.LangGo))
	})
}

func TestMatchVersionPrecision(t *testing.T) {
	t.Parallel()

	t.Run("should truncate to the precision of the original", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, "3.1", entities.MatchVersionPrecision("3.0", "3.1.5"))
		assert.Equal(t, "2", entities.MatchVersionPrecision("1", "2.3.4"))
		assert.Equal(t, "1.2", entities.MatchVersionPrecision("1.2.3", "1.2"))
		assert.Equal(t, "2.0.0", entities.MatchVersionPrecision("1.2.3", "2.0.0"))
	})
}

func TestSplitRequirement(t *testing.T) {
	t.Parallel()

	t.Run("should split decoration, first version and clause count", func(t *testing.T) {
		t.Parallel()

		// given
		cases := []struct {
			input   string
			prefix  string
			version string
			multi   bool
		}{
			{"^1.2", "^", "1.2", false},
			{">=1.2, <1.5", ">=", "1.2", true},
			{"1.2.3", "", "1.2.3", false},
			{"~> 1.2.3", "~> ", "1.2.3", false},
			{"*", "*", "", false},
		}

		for _, tc := range cases {
			// when
			prefix, version, multi := entities.SplitRequirement(tc.input)

			// then
			assert.Equal(t, tc.prefix, prefix, tc.input)
			assert.Equal(t, tc.version, version, tc.input)
			assert.Equal(t, tc.multi, multi, tc.input)
		}
	})
}

func TestSelectLookup(t *testing.T) {
	t.Parallel()

	t.Run("should prefer the prerelease lookup for a prerelease current version", func(t *testing.T) {
		t.Parallel()

		// given
		policy := entities.PythonPolicy{}

		// when / then
		assert.Equal(t, entities.LookupPrerelease, entities.SelectLookup(policy, "2.0.0rc1", true))
		assert.Equal(t, entities.LookupMatching, entities.SelectLookup(policy, "2.0.0", true))
		assert.Equal(t, entities.LookupLatest, entities.SelectLookup(policy, "2.0.0", false))
		assert.Equal(t, "matching", entities.LookupMatching.String())
	})
}
