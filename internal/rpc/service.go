// Package rpc exposes the booking operations over gRPC. Messages are
// google.protobuf.Struct values with the same field names as the REST JSON,
// so no generated stubs are needed.
package rpc

import (
	"context"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"booking-api/internal/handler"
	"booking-api/internal/middleware"
	"booking-api/internal/model"
)

const ServiceName = "booking.v1.BookingService"

// BookingServer is the server API for booking.v1.BookingService.
type BookingServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateClient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetClient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteClient(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAppointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Service adapts handler.Handler to BookingServer.
type Service struct {
	h *handler.Handler
}

var _ BookingServer = (*Service)(nil)

func NewService(h *handler.Handler) *Service {
	return &Service{h: h}
}

func Register(s *grpc.Server, srv BookingServer) {
	s.RegisterService(&serviceDesc, srv)
}

func (s *Service) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.h.Login(ctx, handler.LoginRequest{
		Username: str(in, "username"),
		Password: str(in, "password"),
		Origin:   middleware.PeerOrigin(ctx),
	})
	if err != nil {
		return nil, err
	}
	return out(map[string]any{
		"access_token": resp.AccessToken,
		"token_type":   resp.TokenType,
	})
}

func (s *Service) CreateClient(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	phone := str(in, "phone_number")
	if phone == "" {
		phone = str(in, "phone")
	}
	c, err := s.h.CreateClient(ctx, handler.CreateClientRequest{
		Name:        str(in, "name"),
		Email:       str(in, "email"),
		PhoneNumber: phone,
		Password:    str(in, "password"),
		Address:     str(in, "address"),
	})
	if err != nil {
		return nil, err
	}
	return out(clientFields(c))
}

func (s *Service) GetClient(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := integer(in, "id")
	if err != nil {
		return nil, err
	}
	c, err := s.h.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return out(clientFields(c))
}

func (s *Service) DeleteClient(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := integer(in, "id")
	if err != nil {
		return nil, err
	}
	if err := s.h.DeleteClient(ctx, id); err != nil {
		return nil, err
	}
	return &structpb.Struct{}, nil
}

func (s *Service) ListAppointments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req handler.ListAppointmentsRequest
	var err error
	if req.ClientID, err = integer(in, "client_id"); err != nil {
		return nil, err
	}
	if req.AppointmentID, err = integer(in, "appointment_id"); err != nil {
		return nil, err
	}
	if req.Before, err = epoch(in, "before"); err != nil {
		return nil, err
	}
	if req.After, err = epoch(in, "after"); err != nil {
		return nil, err
	}
	if req.Paid, err = boolean(in, "paid"); err != nil {
		return nil, err
	}

	apts, err := s.h.ListAppointments(ctx, req)
	if err != nil {
		return nil, err
	}
	list := make([]any, len(apts))
	for i := range apts {
		list[i] = appointmentFields(&apts[i])
	}
	return out(map[string]any{"appointments": list})
}

func (s *Service) CreateAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := handler.CreateAppointmentRequest{Description: str(in, "description")}
	var err error
	if req.ClientID, err = integer(in, "client_id"); err != nil {
		return nil, err
	}
	if req.Date, err = integer(in, "date"); err != nil {
		return nil, err
	}
	if req.Price, err = number(in, "price"); err != nil {
		return nil, err
	}
	if req.Paid, err = boolean(in, "paid"); err != nil {
		return nil, err
	}

	apt, err := s.h.CreateAppointment(ctx, req)
	if err != nil {
		return nil, err
	}
	return out(appointmentFields(apt))
}

func (s *Service) CancelAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req handler.CancelAppointmentRequest
	var err error
	if req.ID, err = integer(in, "id"); err != nil {
		return nil, err
	}
	if req.ClientID, err = integer(in, "client_id"); err != nil {
		return nil, err
	}
	if err := s.h.CancelAppointment(ctx, req); err != nil {
		return nil, err
	}
	return &structpb.Struct{}, nil
}

func clientFields(c *model.Client) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"email":        c.Email,
		"phone_number": c.PhoneNumber,
		"address":      c.Address,
		"date_joined":  c.DateJoined.UTC().Format(time.RFC3339),
	}
}

func appointmentFields(a *model.Appointment) map[string]any {
	return map[string]any{
		"id":          a.ID,
		"client_id":   a.ClientID,
		"date":        a.Date.Format("2006-01-02"),
		"description": a.Description,
		"price":       a.Price,
		"paid":        a.Paid,
	}
}

func out(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return s, nil
}

// field accessors: a missing or null field is absent

func field(in *structpb.Struct, name string) *structpb.Value {
	v, ok := in.GetFields()[name]
	if !ok {
		return nil
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil
	}
	return v
}

func invalid(name string) error {
	return status.Errorf(codes.InvalidArgument, "Invalid field: %s", name)
}

func str(in *structpb.Struct, name string) string {
	return field(in, name).GetStringValue()
}

func number(in *structpb.Struct, name string) (*float64, error) {
	v := field(in, name)
	if v == nil {
		return nil, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, invalid(name)
	}
	f := n.NumberValue
	return &f, nil
}

func integer(in *structpb.Struct, name string) (*int64, error) {
	f, err := number(in, name)
	if err != nil || f == nil {
		return nil, err
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil, invalid(name)
	}
	i := handler.EpochSeconds(*f)
	return &i, nil
}

func epoch(in *structpb.Struct, name string) (*time.Time, error) {
	i, err := integer(in, name)
	if err != nil || i == nil {
		return nil, err
	}
	t := time.Unix(*i, 0).UTC()
	return &t, nil
}

func boolean(in *structpb.Struct, name string) (*bool, error) {
	v := field(in, name)
	if v == nil {
		return nil, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, invalid(name)
	}
	x := b.BoolValue
	return &x, nil
}

func unary(name string, call func(BookingServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", BookingServer.Login),
		unary("CreateClient", BookingServer.CreateClient),
		unary("GetClient", BookingServer.GetClient),
		unary("DeleteClient", BookingServer.DeleteClient),
		unary("ListAppointments", BookingServer.ListAppointments),
		unary("CreateAppointment", BookingServer.CreateAppointment),
		unary("CancelAppointment", BookingServer.CancelAppointment),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "booking/v1/booking.proto",
}
