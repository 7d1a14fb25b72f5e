/*
 * Copyright 2026 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package varset

import (
	"fmt"
	"sort"
	"strings"
)

// Set is a set of variable references, compared by their literal token text.
type Set map[string]struct{}

func New(vv ...string) (rs Set) {
	rs = make(Set, len(vv))
	for _, v := range vv {
		rs.Add(v)
	}
	return
}

// Add inserts v, reports whether the set has changed.
func (self Set) Add(v string) bool {
	if _, ok := self[v]; ok {
		return false
	} else {
		self[v] = struct{}{}
		return true
	}
}

func (self Set) Has(v string) bool {
	_, ok := self[v]
	return ok
}

// Remove deletes v, reports whether the set has changed.
func (self Set) Remove(v string) bool {
	if _, ok := self[v]; !ok {
		return false
	} else {
		delete(self, v)
		return true
	}
}

// Union adds every element of rs, reports whether the set has changed.
func (self Set) Union(rs Set) (changed bool) {
	for v := range rs {
		if self.Add(v) {
			changed = true
		}
	}
	return
}

func (self Set) Subtract(rs Set) {
	p, q := self, rs
	if len(q) < len(p) {
		for v := range q {
			delete(p, v)
		}
	} else {
		for v := range p {
			if q.Has(v) {
				delete(p, v)
			}
		}
	}
}

func (self Set) Clone() (rs Set) {
	rs = make(Set, len(self))
	for v := range self {
		rs.Add(v)
	}
	return
}

func (self Set) Equal(rs Set) bool {
	if len(self) != len(rs) {
		return false
	}
	for v := range self {
		if !rs.Has(v) {
			return false
		}
	}
	return true
}

// Subset reports whether every element of self is also in rs.
func (self Set) Subset(rs Set) bool {
	for v := range self {
		if !rs.Has(v) {
			return false
		}
	}
	return true
}

// Slice returns the elements in ascending order.
func (self Set) Slice() []string {
	rr := make([]string, 0, len(self))

	/* extract all variables */
	for v := range self {
		rr = append(rr, v)
	}

	/* sort by name */
	sort.Strings(rr)
	return rr
}

func (self Set) String() string {
	return fmt.Sprintf("{%s}", strings.Join(self.Slice(), ", "))
}
