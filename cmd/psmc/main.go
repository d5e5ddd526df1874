package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"psmc"
	"psmc/fsm"
	"psmc/ltl"
	"psmc/service"
)

var (
	help     = flag.Bool("help", false, "Show usage help")
	parallel = flag.Bool("parallel", false, "Compute the reach sets with a parallel strategy")
	strategy = flag.String("strategy", "message-passing", "Parallel strategy: message-passing or fork-join")
	forward  = flag.String("forward-slices", "", "Comma separated indexes of the state variables slicing the forward reach sets")
	backward = flag.String("backward-slices", "", "Comma separated indexes of the state variables slicing the backward reach sets")
	execs    = flag.Int("executors", 0, "Goroutines computing images with the fork-join strategy, GOMAXPROCS if 0")
	method   = flag.String("trans-method", "partition", "Representation of the transition relation: monolithic or partition")
	safety   = flag.Bool("safety", false, "Only check that no accepting state is reachable")
	extend   = flag.String("extend-trans", "", "Comma separated indexes of the trans constraints assumed by the property")
	trans    = flag.String("translator", "ltl2ba", "LTL to Büchi translator: ltl2ba, ltl2tgba or the path of a compatible program")
	verbose  = flag.Bool("verbose", false, "Log the progress of the check")
	remote   = flag.String("remote", "", "Check on the psmcd server at this endpoint instead of locally")
	timeout  = flag.Duration("timeout", 0, "Give up after this long, no limit if 0")
)

// Usage prints usage info
func Usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] MODEL.json\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nExits with 0 if the property holds, 1 if it is violated and 2 on errors.\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(2)
}

func indexes(list string) ([]int, error) {
	res := []int{}
	if list == "" {
		return res, nil
	}
	for _, field := range strings.Split(list, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %v", field, err)
		}
		res = append(res, i)
	}
	return res, nil
}

func main() {
	flag.Usage = Usage
	flag.Parse()
	if *help || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	model, err := fsm.LoadModelFile(flag.Arg(0))
	if err != nil {
		fatalf("Error: %v", err)
	}
	opts := service.Options{
		Parallel:     *parallel,
		Strategy:     *strategy,
		NumExecutors: *execs,
		TransMethod:  *method,
		Safety:       *safety,
	}
	if opts.ForwardSlices, err = indexes(*forward); err != nil {
		fatalf("Error: -forward-slices: %v", err)
	}
	if opts.BackwardSlices, err = indexes(*backward); err != nil {
		fatalf("Error: -backward-slices: %v", err)
	}
	if opts.ExtendTrans, err = indexes(*extend); err != nil {
		fatalf("Error: -extend-trans: %v", err)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	var holds bool
	if *remote != "" {
		holds = checkRemote(ctx, model, opts)
	} else {
		holds = checkLocal(ctx, model, opts)
	}
	if !holds {
		os.Exit(1)
	}
}

func checkLocal(ctx context.Context, model *fsm.Model, opts service.Options) bool {
	checkerOpts, err := opts.CheckerOptions()
	if err != nil {
		fatalf("Error: %v", err)
	}
	checkerOpts = append(checkerOpts, psmc.WithTranslator(ltl.ByName(*trans, *verbose)))
	if *verbose {
		checkerOpts = append(checkerOpts, psmc.Verbose())
	}
	resp, err := psmc.PrepareChecker(checkerOpts...).Run(ctx, model, psmc.Export(os.Stdout))
	if err != nil {
		fatalf("Error: %v", err)
	}
	return resp.Holds
}

func checkRemote(ctx context.Context, model *fsm.Model, opts service.Options) bool {
	client, err := service.Dial(*remote)
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer client.Close()
	start := time.Now()
	res, err := client.Check(ctx, model, opts)
	if err != nil {
		fatalf("Error: %v", err)
	}
	fmt.Println(res.Message)
	if *verbose {
		log.Printf("Checked on %v in %v, round trip %v\n", *remote, res.Elapsed, time.Since(start))
	}
	return res.Holds
}
