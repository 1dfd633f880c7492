package generate_test

import (
	"go/token"
	"testing"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	. "github.com/onsi/gomega"

	detect "github.com/toejough/deepmock/deepgen/run/3_detect"
	generate "github.com/toejough/deepmock/deepgen/run/5_generate"
)

const servicesSource = `package app

import "context"

type Services interface {
	Users() UserService
	Log(format string, args ...any)
	Ping()
}

type UserService interface {
	Get(ctx context.Context, id int) (*User, error)
	Names(prefixes ...string) []string
	Count() int
}

type User struct{ Name string }
`

func TestCode_SamePackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	code, err := generate.Code(collect(t, servicesSource, "Services"), generate.Options{
		PkgName: "app",
		Name:    "ServicesDeep",
	})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(code).To(HavePrefix("// Code generated by deepgen. DO NOT EDIT."))
	g.Expect(code).To(ContainSubstring("package app"))
	g.Expect(code).To(ContainSubstring(`"context"`))
	g.Expect(code).To(ContainSubstring(`"github.com/toejough/deepmock"`))

	g.Expect(code).To(ContainSubstring("func NewServicesDeep(root deepmock.Getter) Services {"))
	g.Expect(code).To(ContainSubstring("type servicesDeep struct {"))
	g.Expect(code).To(ContainSubstring("type servicesDeepUserService struct {"))
	g.Expect(code).To(ContainSubstring("deepmock.Register(newServicesDeep)"))
	g.Expect(code).To(ContainSubstring("deepmock.Register(newServicesDeepUserService)"))

	g.Expect(code).To(ContainSubstring(`return deepmock.Field(d.node, "Users", newServicesDeepUserService)`))
	g.Expect(code).To(ContainSubstring(
		`deepmock.Call(d.node, "Log", append([]any{a0}, deepmock.Spread(a1)...)...)`,
	))
	g.Expect(code).To(ContainSubstring(`deepmock.Call(d.node, "Ping")`))
	g.Expect(code).To(ContainSubstring(
		"func (d *servicesDeepUserService) Get(a0 context.Context, a1 int) (*User, error) {",
	))
	g.Expect(code).To(ContainSubstring(
		"return deepmock.Result[*User](out, 0), deepmock.Result[error](out, 1)",
	))
	g.Expect(code).To(ContainSubstring(`out := deepmock.Call(d.node, "Names", deepmock.Spread(a0)...)`))
	g.Expect(code).To(ContainSubstring("return deepmock.Result[int](out, 0)"))
}

func TestCode_OtherPackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	code, err := generate.Code(collect(t, servicesSource, "Services"), generate.Options{
		PkgName:     "app_test",
		Name:        "Fake",
		SourceAlias: "app",
		SourcePath:  "example.com/shop/app",
	})
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(code).To(ContainSubstring("package app_test"))
	g.Expect(code).To(ContainSubstring(`"example.com/shop/app"`))
	g.Expect(code).To(ContainSubstring("func NewFake(root deepmock.Getter) app.Services {"))
	g.Expect(code).To(ContainSubstring("func newFakeUserService(node deepmock.Getter) app.UserService {"))
	g.Expect(code).To(ContainSubstring("(*app.User, error)"))
	g.Expect(code).To(ContainSubstring("deepmock.Result[*app.User](out, 0)"))
	g.Expect(code).NotTo(ContainSubstring("app.int"))
}

func TestCode_AliasedSourcePackage(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	code, err := generate.Code(collect(t, servicesSource, "Services"), generate.Options{
		PkgName:     "consumer",
		Name:        "Fake",
		SourceAlias: "shop",
		SourcePath:  "example.com/shop/app",
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(code).To(ContainSubstring(`shop "example.com/shop/app"`))
	g.Expect(code).To(ContainSubstring("shop.Services"))
}

func TestCode_UnexportedTypesInOtherPackageFail(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	shape := collect(t, "package app\n\ntype Services interface{ Get() secret }\n\ntype secret int\n", "Services")

	_, err := generate.Code(shape, generate.Options{
		PkgName:     "app_test",
		Name:        "Fake",
		SourceAlias: "app",
		SourcePath:  "example.com/app",
	})
	g.Expect(err).To(MatchError(generate.ErrUnexported))
	g.Expect(err.Error()).To(ContainSubstring("secret"))
}

func TestCode_UnexportedTypesInSamePackageAreFine(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	shape := collect(t, "package app\n\ntype services interface{ Get() secret }\n\ntype secret int\n", "services")

	code, err := generate.Code(shape, generate.Options{PkgName: "app", Name: "servicesDeep"})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(code).To(ContainSubstring("func NewservicesDeep(root deepmock.Getter) services {"))
	g.Expect(code).To(ContainSubstring("deepmock.Result[secret](out, 0)"))
}

func collect(t *testing.T, source string, name string) detect.Shape {
	t.Helper()

	file, err := decorator.NewDecorator(token.NewFileSet()).Parse(source)
	if err != nil {
		t.Fatalf("failed to parse source: %v", err)
	}

	shape, err := detect.Collect([]*dst.File{file}, name, "")
	if err != nil {
		t.Fatalf("failed to collect %s: %v", name, err)
	}

	return shape
}
