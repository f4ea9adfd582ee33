// Package cmdline implements the textual command protocol: a tokenizer with
// double-quote spans, a typed argument binder, and a registry that turns a
// line into OK/NOK responses.
//
//	reg := cmdline.NewRegistry()
//	reg.Register("timer-start", "start a named timer", func(c *cmdline.Call) {
//	    var name string
//	    var ms int
//	    single := false
//	    if !c.Bind(cmdline.String(&name, "name"), cmdline.Int(&ms, "ms"),
//	        cmdline.OptBool(&single, "single", false)) {
//	        return
//	    }
//	    c.Resp.OKf("timer-start:0:%s", name)
//	})
//
//	resp := reg.Execute(`timer-start close 500`)
//	fmt.Println(resp.Joined()) // OK:timer-start:0:close
//
// A failed binding leaves every target untouched and records three reasons:
//
//	timer-start: ms: expected integer, got soon
//	syntax: timer-start <name:string> <ms:integer> [single:boolean]
//	got   : timer-start close soon
package cmdline
