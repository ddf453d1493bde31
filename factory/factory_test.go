package factory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner/factory"
)

type mapConfig map[string]string

func (m mapConfig) Get(section, key, def string) string {
	val, ok := m[section+"."+key]
	if !ok {
		return def
	}

	return val
}

type widgetBase interface{ isWidget() }

// WidgetBase is embedded by every Widget implementation.
type WidgetBase struct{}

func (WidgetBase) isWidget() {}

type WidgetInterface interface {
	Widget() string
}

type goodWidget struct {
	WidgetBase
	param any
}

func (g *goodWidget) Widget() string { return "good" }

type noBaseWidget struct{}

func (noBaseWidget) Widget() string { return "no-base" }

type noInterfaceWidget struct {
	WidgetBase
}

func newGood(params any) (*goodWidget, error) { return &goodWidget{param: params}, nil }

func newRegistry(t *testing.T, cfg mapConfig) *factory.Registry {
	t.Helper()

	reg := factory.NewRegistry(cfg)
	require.Nil(t, reg.Define(factory.NewCapability[widgetBase, WidgetInterface]("Widget")))
	require.Nil(t, factory.Register(reg, "Widget", "good", newGood))

	return reg
}

func TestDefine(t *testing.T) {
	// Arrange
	reg := factory.NewRegistry(mapConfig{})

	// Act + Assert
	require.ErrorIs(t, reg.Define(factory.Capability{}), factory.ErrInvalidOption)
	require.ErrorIs(t, reg.Define(factory.NewCapability[WidgetBase, WidgetInterface]("Widget")), factory.ErrInvalidOption)
	require.Nil(t, reg.Define(factory.NewCapability[widgetBase, WidgetInterface]("Widget")))
}

func TestRegister(t *testing.T) {
	reg := newRegistry(t, mapConfig{})

	for _, tc := range []struct {
		name     string
		register func() error
		wantErr  error
	}{
		{
			"unknown-capability",
			func() error { return factory.Register(reg, "Cache", "good", newGood) },
			factory.ErrInvalidOption,
		},
		{
			"interface-without-base",
			func() error {
				return factory.Register(reg, "Widget", "no-base", func(any) (noBaseWidget, error) { return noBaseWidget{}, nil })
			},
			factory.ErrInvalidOption,
		},
		{
			"base-without-interface",
			func() error {
				return factory.Register(reg, "Widget", "no-iface", func(any) (noInterfaceWidget, error) {
					return noInterfaceWidget{}, nil
				})
			},
			factory.ErrInvalidOption,
		},
		{
			"nil-ctor",
			func() error { return factory.Register[*goodWidget](reg, "Widget", "nil", nil) },
			factory.ErrInvalidOption,
		},
		{
			"good",
			func() error { return factory.Register(reg, "Widget", "also-good", newGood) },
			nil,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			err := tc.register()

			// Assert
			if tc.wantErr == nil {
				require.Nil(t, err)
				return
			}

			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	// Arrange
	reg := newRegistry(t, mapConfig{"factory_settings.widget": "good"})

	// Act
	w, err := factory.Load[WidgetInterface](reg, "Widget", false, "/tmp/writable")

	// Assert
	require.Nil(t, err)
	require.Equal(t, "good", w.Widget())
	require.Equal(t, "/tmp/writable", w.(*goodWidget).param)

	// Act
	other, err := factory.Load[WidgetInterface](reg, "Widget", false, "/tmp/other")

	// Assert
	require.Nil(t, err)
	require.NotSame(t, w, other)
}

func TestLoadSingleton(t *testing.T) {
	// Arrange
	reg := newRegistry(t, mapConfig{"factory_settings.widget": "good"})

	// Act
	first, err := factory.Load[*goodWidget](reg, "Widget", true, "first")
	require.Nil(t, err)
	second, err := factory.Load[*goodWidget](reg, "Widget", true, "second")
	require.Nil(t, err)

	// Assert
	require.Same(t, first, second)
	require.Equal(t, "first", second.param)
}

func TestLoadErrors(t *testing.T) {
	ctorErr := errors.New("boom")

	for _, tc := range []struct {
		name    string
		cfg     mapConfig
		setup   func(*factory.Registry)
		load    func(*factory.Registry) error
		wantErr error
	}{
		{
			"unconfigured",
			mapConfig{},
			nil,
			func(reg *factory.Registry) error {
				_, err := factory.Load[WidgetInterface](reg, "Widget", false, nil)
				return err
			},
			factory.ErrClassNotFound,
		},
		{
			"unknown-name",
			mapConfig{"factory_settings.widget": "Missing"},
			nil,
			func(reg *factory.Registry) error {
				_, err := factory.Load[WidgetInterface](reg, "Widget", false, nil)
				return err
			},
			factory.ErrClassNotFound,
		},
		{
			"unknown-capability",
			mapConfig{},
			nil,
			func(reg *factory.Registry) error {
				_, err := factory.Load[WidgetInterface](reg, "Cache", false, nil)
				return err
			},
			factory.ErrInvalidOption,
		},
		{
			"wrong-type-param",
			mapConfig{"factory_settings.widget": "good"},
			nil,
			func(reg *factory.Registry) error {
				_, err := factory.Load[noBaseWidget](reg, "Widget", false, nil)
				return err
			},
			factory.ErrInvalidOption,
		},
		{
			"ctor-fails",
			mapConfig{"factory_settings.widget": "failing"},
			func(reg *factory.Registry) {
				require.Nil(t, factory.Register(reg, "Widget", "failing", func(any) (*goodWidget, error) {
					return nil, ctorErr
				}))
			},
			func(reg *factory.Registry) error {
				_, err := factory.Load[WidgetInterface](reg, "Widget", false, nil)
				return err
			},
			ctorErr,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			reg := newRegistry(t, tc.cfg)
			if tc.setup != nil {
				tc.setup(reg)
			}

			// Act
			err := tc.load(reg)

			// Assert
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
