package matcher

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/mongory/adapter/convert"
	"github.com/vinicius-lino-figueiredo/mongory/adapter/regexer"
	"github.com/vinicius-lino-figueiredo/mongory/domain"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

type M = map[string]any

type A = []any

type customAdapterMock struct{ mock.Mock }

// Lookup implements domain.CustomMatcherAdapter.
func (m *customAdapterMock) Lookup(key string) bool {
	return m.Called(key).Bool(0)
}

// Build implements domain.CustomMatcherAdapter.
func (m *customAdapterMock) Build(key string, condition *value.Value, externCtx any) *domain.CustomMatcher {
	call := m.Called(key, condition, externCtx)
	if v := call.Get(0); v != nil {
		return v.(*domain.CustomMatcher)
	}
	return nil
}

// Match implements domain.CustomMatcherAdapter.
func (m *customAdapterMock) Match(external any, v *value.Value) bool {
	return m.Called(external, v).Bool(0)
}

type MatcherTestSuite struct {
	suite.Suite
	arena *arena.Arena
	conv  domain.ValueConverter
	reg   *Registry
}

func (s *MatcherTestSuite) SetupTest() {
	s.arena = arena.New()
	s.conv = convert.NewConverter()
	s.reg = NewRegistry(
		domain.WithRegexAdapter(regexer.NewRegexer()),
		domain.WithValueConverter(s.conv),
		domain.WithTraceColorful(false),
	)
}

func (s *MatcherTestSuite) compile(cond any) Matcher {
	m, err := Compile(s.arena, s.conv.DeepConvert(s.arena, cond), WithRegistry(s.reg))
	s.Require().NoError(err)
	s.Require().NotNil(m)
	return m
}

func (s *MatcherTestSuite) match(m Matcher, record any) bool {
	return m.Match(s.conv.DeepConvert(s.arena, record))
}

// Comparison operators follow signed compare with promotion.
func (s *MatcherTestSuite) TestComparisonOperators() {
	m := s.compile(M{"age": M{"$gte": 18}})
	s.True(s.match(m, M{"age": 20}))
	s.True(s.match(m, M{"age": 18.0}))
	s.False(s.match(m, M{"age": 17}))
	s.False(s.match(m, M{}))
	s.False(s.match(m, M{"age": "20"}))

	s.True(s.match(s.compile(M{"n": M{"$lt": 5}}), M{"n": 4.5}))
	s.False(s.match(s.compile(M{"n": M{"$lt": 5}}), M{"n": 5}))
	s.True(s.match(s.compile(M{"n": M{"$lte": 5}}), M{"n": 5}))
	s.True(s.match(s.compile(M{"n": M{"$gt": 5}}), M{"n": 5.1}))
	s.True(s.match(s.compile(M{"n": M{"$ne": 5}}), M{"n": 6}))
	s.True(s.match(s.compile(M{"n": M{"$ne": 5}}), M{"n": "five"}))
	s.False(s.match(s.compile(M{"n": M{"$ne": 5}}), M{"n": 5.0}))
}

// $or matches when any branch does.
func (s *MatcherTestSuite) TestOrBranches() {
	m := s.compile(M{"$or": A{M{"age": M{"$gte": 18}}, M{"status": "active"}}})
	s.True(s.match(m, M{"age": 10, "status": "active"}))
	s.True(s.match(m, M{"age": 20, "status": "inactive"}))
	s.False(s.match(m, M{"age": 10, "status": "inactive"}))
}

// A scalar condition against an array field is an element-wise test.
func (s *MatcherTestSuite) TestImplicitElemMatch() {
	m := s.compile(M{"tags": "red"})
	s.True(s.match(m, M{"tags": A{"red", "blue"}}))
	s.True(s.match(m, M{"tags": "red"}))
	s.False(s.match(m, M{"tags": A{"green"}}))
	s.False(s.match(m, M{"tags": A{}}))
}

// An array condition against an array field matches whole-array
// equality or any equal element.
func (s *MatcherTestSuite) TestArrayConditionAgainstArrayField() {
	m := s.compile(M{"pair": A{1, 2}})
	s.True(s.match(m, M{"pair": A{1, 2}}))
	s.True(s.match(m, M{"pair": A{A{1, 2}, 3}}))
	s.False(s.match(m, M{"pair": A{2, 1}}))
	s.False(s.match(m, M{"pair": A{1, 2, 3}}))
}

// $elemMatch requires one element satisfying the whole sub-condition.
func (s *MatcherTestSuite) TestElemMatch() {
	m := s.compile(M{"items": M{"$elemMatch": M{"price": M{"$lt": 10}}}})
	s.True(s.match(m, M{"items": A{M{"price": 5}, M{"price": 50}}}))
	s.False(s.match(m, M{"items": A{M{"price": 15}}}))
	s.False(s.match(m, M{"items": A{}}))
	s.False(s.match(m, M{"items": "not an array"}))
}

// $every requires all elements to satisfy the sub-condition; an empty
// array never matches.
func (s *MatcherTestSuite) TestEvery() {
	m := s.compile(M{"items": M{"$every": M{"price": M{"$lt": 10}}}})
	s.True(s.match(m, M{"items": A{M{"price": 5}, M{"price": 9}}}))
	s.False(s.match(m, M{"items": A{M{"price": 5}, M{"price": 50}}}))
	s.False(s.match(m, M{"items": A{}}))
}

// A null condition matches explicit null and missing fields.
func (s *MatcherTestSuite) TestNullCondition() {
	m := s.compile(M{"name": nil})
	s.True(s.match(m, M{"name": nil}))
	s.True(s.match(m, M{}))
	s.False(s.match(m, M{"name": "x"}))
	s.False(s.match(m, M{"name": 0}))
}

// $size compares the array length, also against nested conditions.
func (s *MatcherTestSuite) TestSize() {
	m := s.compile(M{"scores": M{"$size": 3}})
	s.True(s.match(m, M{"scores": A{1, 2, 3}}))
	s.False(s.match(m, M{"scores": A{1, 2}}))
	s.False(s.match(m, M{"scores": "abc"}))

	gt := s.compile(M{"scores": M{"$size": M{"$gt": 2}}})
	s.True(s.match(gt, M{"scores": A{1, 2, 3}}))
	s.False(s.match(gt, M{"scores": A{1, 2}}))
}

// Empty conditions normalize to trivial matchers.
func (s *MatcherTestSuite) TestEmptyNormalizations() {
	s.True(s.match(s.compile(M{}), M{"anything": 1}))
	s.True(s.match(s.compile(M{"$and": A{}}), M{}))
	s.False(s.match(s.compile(M{"$or": A{}}), M{"anything": 1}))
}

// $in is membership; $nin its negation; empty condition arrays match
// nothing and everything respectively.
func (s *MatcherTestSuite) TestInNin() {
	m := s.compile(M{"color": M{"$in": A{"red", "blue"}}})
	s.True(s.match(m, M{"color": "red"}))
	s.False(s.match(m, M{"color": "green"}))
	s.True(s.match(m, M{"color": A{"green", "blue"}}))
	s.False(s.match(m, M{}))

	n := s.compile(M{"color": M{"$nin": A{"red", "blue"}}})
	s.False(s.match(n, M{"color": "red"}))
	s.True(s.match(n, M{"color": "green"}))
	s.True(s.match(n, M{}))

	s.False(s.match(s.compile(M{"x": M{"$in": A{}}}), M{"x": 1}))
	s.True(s.match(s.compile(M{"x": M{"$nin": A{}}}), M{"x": 1}))
}

// Large mixed-kind $in lists keep exact membership semantics.
func (s *MatcherTestSuite) TestInLargeMixedList() {
	list := make(A, 0, 104)
	for i := 0; i < 100; i++ {
		list = append(list, i)
	}
	list = append(list, "str", nil, true, A{1, 2})
	m := s.compile(M{"x": M{"$in": list}})

	s.True(s.match(m, M{"x": 50}))
	s.True(s.match(m, M{"x": 50.0}))
	s.False(s.match(m, M{"x": 150}))
	s.True(s.match(m, M{"x": "str"}))
	s.False(s.match(m, M{"x": "other"}))
	s.True(s.match(m, M{"x": nil}))
	s.True(s.match(m, M{"x": true}))
	s.False(s.match(m, M{"x": false}))
	s.True(s.match(m, M{"x": A{99}}))
	s.False(s.match(m, M{"x": A{"no"}}))
}

// $exists distinguishes absent from explicitly null.
func (s *MatcherTestSuite) TestExists() {
	m := s.compile(M{"a": M{"$exists": true}})
	s.True(s.match(m, M{"a": 1}))
	s.True(s.match(m, M{"a": nil}))
	s.False(s.match(m, M{}))

	n := s.compile(M{"a": M{"$exists": false}})
	s.False(s.match(n, M{"a": nil}))
	s.True(s.match(n, M{}))
}

// $present is truthy presence; booleans match their own value.
func (s *MatcherTestSuite) TestPresent() {
	m := s.compile(M{"a": M{"$present": true}})
	s.True(s.match(m, M{"a": 1}))
	s.True(s.match(m, M{"a": "x"}))
	s.False(s.match(m, M{"a": ""}))
	s.False(s.match(m, M{"a": A{}}))
	s.False(s.match(m, M{"a": M{}}))
	s.False(s.match(m, M{"a": nil}))
	s.False(s.match(m, M{}))
	s.True(s.match(m, M{"a": true}))
	s.False(s.match(m, M{"a": false}))

	n := s.compile(M{"a": M{"$present": false}})
	s.True(s.match(n, M{}))
	s.True(s.match(n, M{"a": ""}))
	s.False(s.match(n, M{"a": 1}))
	s.True(s.match(n, M{"a": false}))
}

// Numeric field keys index arrays, counting from the end when negative.
func (s *MatcherTestSuite) TestArrayIndexing() {
	abc := A{"a", "b", "c"}
	s.True(s.match(s.compile(M{"1": "b"}), abc))
	s.True(s.match(s.compile(M{"-1": "c"}), abc))
	s.False(s.match(s.compile(M{"-4": "a"}), abc))
	s.False(s.match(s.compile(M{"3": "a"}), abc))
	s.False(s.match(s.compile(M{"abc": "a"}), abc))
}

// $not negates, and De Morgan's law holds on every input.
func (s *MatcherTestSuite) TestNotAndDeMorgan() {
	notBoth := s.compile(M{"$not": M{"age": M{"$gte": 18}, "status": "active"}})
	orOfNots := s.compile(M{"$or": A{
		M{"$not": M{"age": M{"$gte": 18}}},
		M{"$not": M{"status": "active"}},
	}})

	inputs := []any{
		M{"age": 20, "status": "active"},
		M{"age": 10, "status": "active"},
		M{"age": 20, "status": "x"},
		M{"age": 10},
		M{},
	}
	for _, record := range inputs {
		s.Equal(s.match(orOfNots, record), s.match(notBoth, record), "record %v", record)
	}
	s.False(s.match(notBoth, M{"age": 20, "status": "active"}))
	s.True(s.match(notBoth, M{"age": 10, "status": "active"}))
}

// $regex defers to the registered engine; only string inputs match.
func (s *MatcherTestSuite) TestRegexOperator() {
	m := s.compile(M{"name": M{"$regex": "^al.*e$"}})
	s.True(s.match(m, M{"name": "alice"}))
	s.False(s.match(m, M{"name": "bob"}))
	s.False(s.match(m, M{"name": 42}))
	s.False(s.match(m, M{}))
}

// A regex literal as the field condition behaves like $regex, including
// the element-wise array path.
func (s *MatcherTestSuite) TestRegexLiteral() {
	m := s.compile(M{"name": regexp.MustCompile("^b")})
	s.True(s.match(m, M{"name": "bob"}))
	s.False(s.match(m, M{"name": "alice"}))
	s.True(s.match(m, M{"name": A{"alice", "bob"}}))
}

// Without a regex engine the default adapter matches nothing.
func (s *MatcherTestSuite) TestDefaultRegexAdapter() {
	reg := NewRegistry()
	cond := s.conv.DeepConvert(s.arena, M{"name": M{"$regex": "^a"}})
	m, err := Compile(s.arena, cond, WithRegistry(reg))
	s.Require().NoError(err)
	s.False(s.match(m, M{"name": "alice"}))
}

// Unknown $-keys approved by the custom adapter build host matchers;
// the external context is threaded through.
func (s *MatcherTestSuite) TestCustomMatcher() {
	adapter := new(customAdapterMock)
	adapter.On("Lookup", "$shout").Return(true)
	adapter.On("Build", "$shout", mock.Anything, "ctx").
		Return(&domain.CustomMatcher{Name: "Shout", External: "ext"})
	adapter.On("Match", "ext", mock.Anything).Return(true).Once()
	adapter.On("Match", "ext", mock.Anything).Return(false).Once()
	s.reg.SetCustomMatcherAdapter(adapter)

	cond := s.conv.DeepConvert(s.arena, M{"$shout": "hey"})
	m, err := Compile(s.arena, cond, WithRegistry(s.reg), WithExternContext("ctx"))
	s.Require().NoError(err)
	s.Equal("Shout", m.Name())
	s.True(s.match(m, M{}))
	s.False(s.match(m, M{}))
	adapter.AssertExpectations(s.T())
}

// Unknown $-keys without a custom adapter fall through to field names.
func (s *MatcherTestSuite) TestUnknownOperatorFallsThroughToField() {
	m := s.compile(M{"$weird": 1})
	s.True(s.match(m, M{"$weird": 1}))
	s.False(s.match(m, M{"$weird": 2}))
}

// Composite children evaluate cheapest-first: consecutive priorities
// never decrease.
func (s *MatcherTestSuite) TestPriorityOrdering() {
	m := s.compile(M{
		"a": M{"$gte": 1},
		"b": 1,
		"c": M{"$regex": "x"},
	})
	composite, ok := m.(*compositeMatcher)
	s.Require().True(ok)
	s.Require().Len(composite.children, 3)
	for i := 1; i < len(composite.children); i++ {
		s.LessOrEqual(composite.children[i-1].Priority(), composite.children[i].Priority())
	}
	fields := make([]string, 0, 3)
	for _, child := range composite.children {
		fields = append(fields, child.(*fieldMatcher).field)
	}
	s.Equal([]string{"b", "a", "c"}, fields)
}

// $in priority grows logarithmically with the condition size.
func (s *MatcherTestSuite) TestInclusionPriority() {
	small := s.compile(M{"x": M{"$in": A{1}}}).(*fieldMatcher)
	big := s.compile(M{"x": M{"$in": A{1, 2, 3, 4, 5, 6, 7, 8}}}).(*fieldMatcher)
	s.Less(small.delegate.Priority(), big.delegate.Priority())
}

// Traverse visits every node exactly once.
func (s *MatcherTestSuite) TestTraverseVisitsEachNodeOnce() {
	m := s.compile(M{"$or": A{M{"age": M{"$gte": 18}}, M{"status": "active"}}})
	seen := map[Matcher]int{}
	total := 0
	m.Traverse(&TraverseContext{Callback: func(node Matcher, _ *TraverseContext) bool {
		seen[node]++
		total++
		return true
	}})
	s.Equal(5, total)
	for node, n := range seen {
		s.Equal(1, n, "node %s visited more than once", node.Name())
	}
}

// Compiling the same condition twice yields trees that match
// identically.
func (s *MatcherTestSuite) TestIdempotentCompile() {
	cond := M{"$or": A{M{"age": M{"$gte": 18}}, M{"tags": "red"}}}
	m1 := s.compile(cond)
	m2 := s.compile(cond)
	inputs := []any{
		M{"age": 20},
		M{"age": 10},
		M{"tags": A{"red"}},
		M{"tags": A{"blue"}},
		M{},
	}
	for _, record := range inputs {
		s.Equal(s.match(m1, record), s.match(m2, record), "record %v", record)
	}
}

// eq matches exactly when compare reports equality.
func (s *MatcherTestSuite) TestEqMatchesCompare() {
	a := s.arena
	conds := []*value.Value{
		value.NewInt(a, 3),
		value.NewString(a, "x"),
		value.NewBool(a, true),
	}
	records := []*value.Value{
		value.NewInt(a, 3),
		value.NewDouble(a, 3.0),
		value.NewString(a, "x"),
		value.NewBool(a, false),
		value.NewNull(a),
	}
	c := &compiler{a: a, reg: s.reg}
	for _, cond := range conds {
		eq := c.buildEq(cond)
		for _, record := range records {
			s.Equal(record.Compare(cond) == value.Equal, eq.Match(record))
		}
	}
}

// Shape violations set the arena error and fail the compile.
func (s *MatcherTestSuite) TestCompileErrors() {
	cases := []struct {
		name string
		cond any
		kind arena.ErrorKind
	}{
		{"non-table condition", A{1}, arena.KindInvalidType},
		{"$and non-array", M{"$and": 1}, arena.KindInvalidType},
		{"$and non-table element", M{"$and": A{1}}, arena.KindInvalidType},
		{"$or non-array", M{"$or": "x"}, arena.KindInvalidType},
		{"$in non-array", M{"x": M{"$in": 1}}, arena.KindInvalidArgument},
		{"$exists non-bool", M{"x": M{"$exists": 1}}, arena.KindInvalidArgument},
		{"$regex wrong kind", M{"x": M{"$regex": 1}}, arena.KindInvalidArgument},
		{"$elemMatch non-table", M{"x": M{"$elemMatch": 1}}, arena.KindInvalidType},
	}
	for _, tc := range cases {
		a := arena.New()
		cond := s.conv.DeepConvert(a, tc.cond)
		m, err := Compile(a, cond, WithRegistry(s.reg))
		s.Nil(m, tc.name)
		s.Require().Error(err, tc.name)
		s.Equal(tc.kind, err.(*arena.Error).Kind, tc.name)
	}
}

// A reset compilation arena re-drives the same compile to an
// equivalent matcher.
func (s *MatcherTestSuite) TestResetAndRecompile() {
	a := arena.New()
	cond := M{"age": M{"$gte": 18}}
	m, err := Compile(a, s.conv.DeepConvert(a, cond), WithRegistry(s.reg))
	s.Require().NoError(err)
	s.True(m.Match(s.conv.DeepConvert(a, M{"age": 20})))

	a.Reset()
	m, err = Compile(a, s.conv.DeepConvert(a, cond), WithRegistry(s.reg))
	s.Require().NoError(err)
	s.True(m.Match(s.conv.DeepConvert(a, M{"age": 20})))
	s.False(m.Match(s.conv.DeepConvert(a, M{"age": 10})))
}

// A pointer field value goes through the converter's shallow path
// before matching.
func (s *MatcherTestSuite) TestShallowPointerConversion() {
	m := s.compile(M{"user": M{"name": "bob"}})

	record := value.NewTable(s.arena)
	record.Set("user", value.NewPointer(s.arena, M{"name": "bob"}))
	s.True(m.Match(value.FromTable(s.arena, record)))

	record2 := value.NewTable(s.arena)
	record2.Set("user", value.NewPointer(s.arena, M{"name": "eve"}))
	s.False(m.Match(value.FromTable(s.arena, record2)))
}

// Evaluation is total: junk inputs degrade to false, never panic.
func (s *MatcherTestSuite) TestEvaluationIsTotal() {
	m := s.compile(M{"a": M{"b": M{"$gt": 1}}})
	s.False(m.Match(nil))
	s.False(s.match(m, 42))
	s.False(s.match(m, "string"))
	s.False(s.match(m, M{"a": 1}))
	s.False(s.match(m, M{"a": M{"b": "x"}}))
}

func TestMatcherTestSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}
