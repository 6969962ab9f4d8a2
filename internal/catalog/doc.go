// Package catalog loads type definitions from YAML and builds them into
// typenode types whose methods are small scripts.
//
// # Schema Overview
//
//	version: "1"
//	types:
//	  - name: C
//	    init:
//	      set: {a3: "@m3"}          # attribute a3 = result of self.m3()
//	    methods:
//	      - name: m1
//	        returns: C.m1
//	  - name: CChild
//	    bases: C                  # one base or a list
//	    init:
//	      params: [a, "kw=1", "**rest"]
//	      super: true               # run C's constructor first
//	      set: {a2: $a}             # attribute a2 = argument a
//	    methods:
//	      - name: d1
//	        wraps: true             # decorator-style
//	      - name: m2
//	        decorate_with: [d1]
//	        fallback: prepare       # runs first when no d1 exists
//	compose:
//	  roots: [CChild]
//	  fan_out: [d1]
//	  strict: true
//
// Every scripted call records an Event into the catalogue's Trace, which is
// how composed behavior is observed from the command line and in tests.
package catalog
