package headless

import (
	"time"

	"github.com/chromedp/chromedp"
)

// ExpandStrategy contributes post-load browser actions that surface content
// hidden behind user interaction, run after navigation and before the DOM
// snapshot is taken.
type ExpandStrategy interface {
	Actions() []chromedp.Action
}

// NoopExpand performs no expansion.
type NoopExpand struct{}

// Actions implements ExpandStrategy.
func (NoopExpand) Actions() []chromedp.Action { return nil }

// loadMoreScript clicks visible buttons or links whose text suggests they
// reveal more content. A single pass; repeated pagination is out of scope.
const loadMoreScript = `(() => {
	const labels = ['load more', 'show more', 'view more', 'see more', 'more results'];
	const candidates = document.querySelectorAll('button, a, [role="button"]');
	let clicked = 0;
	for (const el of candidates) {
		const text = (el.innerText || '').trim().toLowerCase();
		if (labels.some(l => text === l || text.startsWith(l))) {
			el.click();
			clicked++;
		}
	}
	return clicked;
})()`

// LoadMoreExpand clicks "load more"-style controls once and waits briefly
// for the triggered content to settle.
type LoadMoreExpand struct {
	Settle time.Duration
}

// Actions implements ExpandStrategy.
func (e LoadMoreExpand) Actions() []chromedp.Action {
	settle := e.Settle
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return []chromedp.Action{
		chromedp.Evaluate(loadMoreScript, nil),
		chromedp.Sleep(settle),
	}
}
