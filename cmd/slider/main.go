//go:build js && wasm

// Command slider binds the comparison slider to every element carrying a
// data-compare attribute. go generate ./internal/web builds it into the
// embedded static assets.
package main

import (
	"syscall/js"

	"geniusdesign/internal/compare"
)

type domFrame struct {
	el js.Value
}

func (f domFrame) Bounds() (compare.Rect, bool) {
	if f.el.IsUndefined() || f.el.IsNull() || !f.el.Get("isConnected").Truthy() {
		return compare.Rect{}, false
	}
	r := f.el.Call("getBoundingClientRect")
	width := r.Get("width").Float()
	if width <= 0 {
		return compare.Rect{}, false
	}
	return compare.Rect{Left: r.Get("left").Float(), Width: width}, true
}

// documentListeners owns the document-level handlers of one slider.
type documentListeners struct {
	doc      js.Value
	handlers map[string]js.Func
}

func (l *documentListeners) Acquire() {
	for name, fn := range l.handlers {
		l.doc.Call("addEventListener", name, fn)
	}
}

func (l *documentListeners) Release() {
	for name, fn := range l.handlers {
		l.doc.Call("removeEventListener", name, fn)
	}
}

func clientX(event js.Value) float64 {
	if touches := event.Get("touches"); !touches.IsUndefined() && touches.Length() > 0 {
		return touches.Index(0).Get("clientX").Float()
	}
	return event.Get("clientX").Float()
}

func bind(doc, el js.Value) {
	beforeImg := el.Call("querySelector", "[data-compare-before]")
	overlay := el.Call("querySelector", "[data-compare-overlay]")
	divider := el.Call("querySelector", "[data-compare-divider]")
	if beforeImg.IsNull() || overlay.IsNull() {
		return
	}
	before := beforeImg.Call("getAttribute", "src").String()
	after := overlay.Call("getAttribute", "src").String()

	listeners := &documentListeners{doc: doc, handlers: map[string]js.Func{}}
	slider, err := compare.New(before, after, domFrame{el: el}, listeners)
	if err != nil {
		js.Global().Get("console").Call("warn", "slider:", err.Error())
		return
	}

	paint := func() {
		v := slider.View()
		overlay.Get("style").Set("clipPath", v.Clip)
		if !divider.IsNull() {
			divider.Get("style").Set("left", v.DividerLeft)
		}
	}

	move := js.FuncOf(func(_ js.Value, args []js.Value) any {
		slider.Move(clientX(args[0]))
		paint()
		return nil
	})
	release := js.FuncOf(func(_ js.Value, _ []js.Value) any {
		slider.Release()
		return nil
	})
	listeners.handlers["mousemove"] = move
	listeners.handlers["touchmove"] = move
	listeners.handlers["mouseup"] = release
	listeners.handlers["touchend"] = release

	press := js.FuncOf(func(_ js.Value, _ []js.Value) any {
		slider.Press()
		return nil
	})
	el.Call("addEventListener", "mousedown", press)
	el.Call("addEventListener", "touchstart", press)

	// The page dispatches compare:teardown on the document when it goes away,
	// whether or not a drag is in progress.
	var teardown js.Func
	teardown = js.FuncOf(func(_ js.Value, _ []js.Value) any {
		slider.Close()
		el.Call("removeEventListener", "mousedown", press)
		el.Call("removeEventListener", "touchstart", press)
		doc.Call("removeEventListener", "compare:teardown", teardown)
		press.Release()
		move.Release()
		release.Release()
		teardown.Release()
		return nil
	})
	doc.Call("addEventListener", "compare:teardown", teardown)

	paint()
}

func main() {
	doc := js.Global().Get("document")
	nodes := doc.Call("querySelectorAll", "[data-compare]")
	for i := 0; i < nodes.Length(); i++ {
		bind(doc, nodes.Index(i))
	}
	select {}
}
