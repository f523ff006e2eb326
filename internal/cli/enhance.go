package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/SyedDaiam9101/conditioning-service/internal/device"
	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
	pb "github.com/SyedDaiam9101/conditioning-service/internal/enhancerpb"
	"github.com/SyedDaiam9101/conditioning-service/internal/middleware"
	"github.com/SyedDaiam9101/conditioning-service/internal/preset"
)

type enhanceOptions struct {
	in     string
	out    string
	params string
	local  bool
}

// NewEnhanceCommand creates the enhance command.
func NewEnhanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &enhanceOptions{}

	cmd := &cobra.Command{
		Use:   "enhance",
		Short: "Enhance a CBOR-encoded conditioning collection",
		Long: `Read an EnhanceRequest in CBOR from --in, enhance it, and write the
EnhanceResponse in CBOR to --out. A preset given with --params replaces the
request's parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnhance(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "request file (CBOR)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "response file (CBOR)")
	cmd.Flags().StringVarP(&opts.params, "params", "p", "", "parameter preset (.yaml or .cue)")
	cmd.Flags().BoolVar(&opts.local, "local", false, "run the pipeline in-process instead of calling the service")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runEnhance(cmd *cobra.Command, rootOpts *RootOptions, opts *enhanceOptions) error {
	raw, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req pb.EnhanceRequest
	if err := pb.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("decode request %s: %w", opts.in, err)
	}

	if opts.params != "" {
		params, err := preset.LoadFile(opts.params, enhance.DefaultParameters())
		if err != nil {
			return err
		}
		req.Parameters = pb.ParametersFrom(params)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.Timeout)
	defer cancel()

	var resp *pb.EnhanceResponse
	if opts.local {
		resp, err = enhanceLocal(ctx, &req)
	} else {
		resp, err = enhanceRemote(ctx, rootOpts.Addr, &req)
	}
	if err != nil {
		return err
	}

	encoded, err := pb.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := os.WriteFile(opts.out, encoded, 0o644); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "enhanced %d entries -> %s (cached=%v)\n", len(resp.Entries), opts.out, resp.Cached)
	return nil
}

func enhanceRemote(ctx context.Context, addr string, req *pb.EnhanceRequest) (*pb.EnhanceResponse, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(middleware.UnaryClientRequestIDInterceptor()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := pb.NewEnhancerClient(conn).Enhance(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	return resp, nil
}

func enhanceLocal(ctx context.Context, req *pb.EnhanceRequest) (*pb.EnhanceResponse, error) {
	in, err := pb.ToCollection(req.Entries)
	if err != nil {
		return nil, err
	}
	pipeline := enhance.New(device.NewSysfsResolver())
	defer pipeline.Close()

	out, err := pipeline.Enhance(ctx, in, req.Parameters.Apply(enhance.DefaultParameters()))
	if err != nil {
		return nil, err
	}
	entries, err := pb.FromCollection(out)
	if err != nil {
		return nil, err
	}
	return &pb.EnhanceResponse{Entries: entries}, nil
}
