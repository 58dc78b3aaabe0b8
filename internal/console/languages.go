package console

import (
	"strings"
	"sync"

	"github.com/satriahrh/lintas/domain/entities"
)

// LanguageSelection is the user-controlled language pair
type LanguageSelection struct {
	mu   sync.RWMutex
	pair entities.LanguagePair
}

func NewLanguageSelection(source, target string) *LanguageSelection {
	return &LanguageSelection{pair: entities.LanguagePair{Source: source, Target: target}}
}

// Languages returns the current selection
func (l *LanguageSelection) Languages() entities.LanguagePair {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pair
}

// Set replaces the selection. Codes are not validated.
func (l *LanguageSelection) Set(source, target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pair = entities.LanguagePair{Source: strings.TrimSpace(source), Target: strings.TrimSpace(target)}
}
